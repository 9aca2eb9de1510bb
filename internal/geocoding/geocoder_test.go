package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CatalogLocation(t *testing.T) {
	g := NewGeocoder(nil, "")

	lat, lng, err := g.Resolve(context.Background(), "Lekki Phase 1, Lagos")
	require.NoError(t, err)
	assert.Equal(t, 6.4478, lat)
	assert.Equal(t, 3.4723, lng)
}

func TestResolve_UnknownWithoutRemote(t *testing.T) {
	g := NewGeocoder(nil, "")

	_, _, err := g.Resolve(context.Background(), "Epe, Lagos")
	assert.ErrorIs(t, err, ErrNoResults)

	_, _, err = g.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestResolve_RemoteLookupIsCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Epe, Lagos, Nigeria", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"6.5841","lon":"3.9834"}]`))
	}))
	defer server.Close()

	g := NewGeocoder(nil, server.URL)

	for i := 0; i < 2; i++ {
		lat, lng, err := g.Resolve(context.Background(), "Epe, Lagos")
		require.NoError(t, err)
		assert.Equal(t, 6.5841, lat)
		assert.Equal(t, 3.9834, lng)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResolve_RemoteNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := NewGeocoder(nil, server.URL)
	_, _, err := g.Resolve(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ErrNoResults)
}
