package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationNames(t *testing.T) {
	names := LocationNames()

	assert.Len(t, names, len(SupportedLocations))
	assert.Equal(t, "Victoria Island", names[0])
	assert.Contains(t, names, "Yaba")
}

func TestLocationByName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact", "Ikoyi", "Ikoyi"},
		{"case-insensitive", "lekki phase 1", "Lekki Phase 1"},
		{"trims spaces", "  Yaba ", "Yaba"},
		{"unknown", "Epe", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := LocationByName(tt.input)
			if tt.want == "" {
				assert.Nil(t, loc)
				return
			}
			require.NotNil(t, loc)
			assert.Equal(t, tt.want, loc.Name)
			assert.Len(t, loc.Center, 2)
		})
	}
}

func TestPriceRangeContains(t *testing.T) {
	tests := []struct {
		name  string
		index int
		price int
		want  bool
	}{
		{"lower bound inclusive", 1, 200000, true},
		{"upper bound inclusive", 1, 350000, true},
		{"below range", 1, 199999, false},
		{"above range", 1, 350001, false},
		{"open ended", 5, 50000000, true},
		{"open ended lower bound", 5, 1000000, true},
		{"first range from zero", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PriceRangeAt(tt.index)
			require.NotNil(t, r)
			assert.Equal(t, tt.want, r.Contains(tt.price))
		})
	}
}

func TestPriceRangeAt_OutOfRange(t *testing.T) {
	assert.Nil(t, PriceRangeAt(-1))
	assert.Nil(t, PriceRangeAt(len(PriceRanges)))
}

func TestCatalogLookups(t *testing.T) {
	assert.True(t, IsPropertyType("penthouse"))
	assert.False(t, IsPropertyType("Castle"))
	assert.True(t, IsAmenity("Swimming Pool"))
	assert.False(t, IsAmenity("Helipad"))
	assert.True(t, IsUSSDBank("gtb"))
	assert.False(t, IsUSSDBank("GTB"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BOOKING_FEE", "7500")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7500, cfg.Booking.Fee)
	assert.Equal(t, "2s", cfg.Delays.Payment.String())
	assert.Equal(t, int64(10485760), cfg.Wizard.MaxUploadSize)
	assert.True(t, cfg.UsesDefaultJWTSecret())
}

func TestLoadConfig_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "rotated-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "rotated-secret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.UsesDefaultJWTSecret())

	cfg.Auth.JWTSecret = DefaultJWTSecret
	assert.True(t, cfg.UsesDefaultJWTSecret())
}
