package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"lagospaces/server/config"
	"lagospaces/server/internal/geometry"
	"lagospaces/server/internal/models"
)

var ErrInvalidCriteria = errors.New("invalid search criteria")

// Filter returns the properties matching every active criterion, in input order.
// It does not modify its input.
func Filter(properties []models.Property, criteria *models.SearchCriteria) []models.Property {
	result := make([]models.Property, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		if !criteria.Matches(p) {
			continue
		}
		if criteria != nil && criteria.Near != nil && criteria.RadiusKm > 0 &&
			!geometry.WithinRadius(p, *criteria.Near, criteria.RadiusKm) {
			continue
		}
		result = append(result, *p)
	}
	return result
}

// CriteriaFromQuery parses search page query parameters. Repeated location and type
// parameters select several values at once.
func CriteriaFromQuery(q url.Values) (*models.SearchCriteria, error) {
	c := &models.SearchCriteria{
		Query: strings.TrimSpace(q.Get("q")),
	}

	for _, loc := range q["location"] {
		if loc = strings.TrimSpace(loc); loc != "" {
			c.Locations = append(c.Locations, loc)
		}
	}
	for _, t := range q["type"] {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		if !config.IsPropertyType(t) {
			return nil, fmt.Errorf("%w: unknown property type %q", ErrInvalidCriteria, t)
		}
		c.PropertyTypes = append(c.PropertyTypes, t)
	}

	if v := q.Get("price_range"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil || config.PriceRangeAt(i) == nil {
			return nil, fmt.Errorf("%w: price_range must be 0-%d", ErrInvalidCriteria, len(config.PriceRanges)-1)
		}
		c.PriceRange = &i
	}

	if v := q.Get("bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bedrooms must be a non-negative number", ErrInvalidCriteria)
		}
		c.Bedrooms = &n
	}

	if v := q.Get("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: verified must be true or false", ErrInvalidCriteria)
		}
		c.VerifiedOnly = b
	}

	lat, lng := q.Get("lat"), q.Get("lng")
	if lat != "" || lng != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		lo, errLng := strconv.ParseFloat(lng, 64)
		if errLat != nil || errLng != nil || la < -90 || la > 90 || lo < -180 || lo > 180 {
			return nil, fmt.Errorf("%w: lat and lng must be valid coordinates", ErrInvalidCriteria)
		}
		c.Near = &models.GeoPoint{Latitude: la, Longitude: lo}

		c.RadiusKm = 5
		if v := q.Get("radius_km"); v != "" {
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r <= 0 {
				return nil, fmt.Errorf("%w: radius_km must be positive", ErrInvalidCriteria)
			}
			c.RadiusKm = r
		}
	}

	return c, nil
}

// Values is the canonical query form of the criteria, used as a cache fingerprint
func Values(c *models.SearchCriteria) url.Values {
	v := url.Values{}
	if c == nil {
		return v
	}
	if c.Query != "" {
		v.Set("q", strings.ToLower(c.Query))
	}
	for _, loc := range c.Locations {
		v.Add("location", loc)
	}
	for _, t := range c.PropertyTypes {
		v.Add("type", strings.ToLower(t))
	}
	if c.PriceRange != nil {
		v.Set("price_range", strconv.Itoa(*c.PriceRange))
	}
	if c.Bedrooms != nil {
		v.Set("bedrooms", strconv.Itoa(*c.Bedrooms))
	}
	if c.VerifiedOnly {
		v.Set("verified", "true")
	}
	if c.Near != nil && c.RadiusKm > 0 {
		v.Set("lat", strconv.FormatFloat(c.Near.Latitude, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(c.Near.Longitude, 'f', -1, 64))
		v.Set("radius_km", strconv.FormatFloat(c.RadiusKm, 'f', -1, 64))
	}
	return v
}
