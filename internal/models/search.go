package models

import (
	"strings"

	"lagospaces/server/config"
)

// SearchCriteria holds the search page filters. The zero value matches everything.
type SearchCriteria struct {
	Query         string   `json:"q,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	PriceRange    *int     `json:"price_range,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	PropertyTypes []string `json:"property_types,omitempty"`
	VerifiedOnly  bool     `json:"verified_only,omitempty"`

	// Optional radius search around a point
	Near     *GeoPoint `json:"near,omitempty"`
	RadiusKm float64   `json:"radius_km,omitempty"`
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Matches checks if a property passes the text, location, price, bedroom, type and
// verification filters. Radius filtering needs geometry and is applied by the search package.
func (c *SearchCriteria) Matches(property *Property) bool {
	if c == nil {
		return true
	}

	if c.Query != "" {
		q := strings.ToLower(c.Query)
		if !strings.Contains(strings.ToLower(property.Title), q) &&
			!strings.Contains(strings.ToLower(property.Location), q) {
			return false
		}
	}

	if len(c.Locations) > 0 {
		found := false
		for _, loc := range c.Locations {
			if strings.Contains(property.Location, loc) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.PriceRange != nil {
		r := config.PriceRangeAt(*c.PriceRange)
		if r == nil || !r.Contains(property.Price) {
			return false
		}
	}

	if c.Bedrooms != nil && property.Bedrooms != *c.Bedrooms {
		return false
	}

	if len(c.PropertyTypes) > 0 {
		allowed := false
		for _, t := range c.PropertyTypes {
			if strings.EqualFold(t, property.PropertyType) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if c.VerifiedOnly && !property.IsVerified {
		return false
	}

	return true
}

// ActiveFilterCount is the badge number on the filter toggle. The free-text query is not counted.
func (c *SearchCriteria) ActiveFilterCount() int {
	if c == nil {
		return 0
	}
	n := len(c.Locations) + len(c.PropertyTypes)
	if c.PriceRange != nil {
		n++
	}
	if c.Bedrooms != nil {
		n++
	}
	if c.VerifiedOnly {
		n++
	}
	if c.Near != nil && c.RadiusKm > 0 {
		n++
	}
	return n
}
