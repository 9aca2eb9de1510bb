package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"lagospaces/server/internal/models"
)

// Point converts latitude/longitude into an orb point, which is ordered longitude first
func Point(lat, lng float64) orb.Point {
	return orb.Point{lng, lat}
}

func propertyPoint(p *models.Property) (orb.Point, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return orb.Point{}, false
	}
	return Point(*p.Latitude, *p.Longitude), true
}

// DistanceKm is the great-circle distance between two points
func DistanceKm(a, b models.GeoPoint) float64 {
	return geo.Distance(Point(a.Latitude, a.Longitude), Point(b.Latitude, b.Longitude)) / 1000
}

// WithinRadius reports whether the property lies within radiusKm of center. Properties
// without coordinates are never inside a radius.
func WithinRadius(p *models.Property, center models.GeoPoint, radiusKm float64) bool {
	pt, ok := propertyPoint(p)
	if !ok {
		return false
	}
	c := Point(center.Latitude, center.Longitude)

	// Cheap rectangle check before the haversine distance
	if !geo.NewBoundAroundPoint(c, radiusKm*1000).Contains(pt) {
		return false
	}
	return geo.Distance(c, pt) <= radiusKm*1000
}

// Bounds returns the bounding box of all properties with coordinates
func Bounds(properties []models.Property) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for i := range properties {
		if pt, ok := propertyPoint(&properties[i]); ok {
			mp = append(mp, pt)
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}

// FeatureCollection renders properties as GeoJSON points for the map view
func FeatureCollection(properties []models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := range properties {
		p := &properties[i]
		pt, ok := propertyPoint(p)
		if !ok {
			continue
		}

		feature := geojson.NewFeature(pt)
		feature.ID = p.ID
		feature.Properties = geojson.Properties{
			"id":          p.ID,
			"title":       p.Title,
			"location":    p.Location,
			"price":       p.Price,
			"price_label": models.FormatPrice(p.Price, p.Currency),
			"bedrooms":    p.Bedrooms,
			"image_url":   p.ImageURL(),
			"is_verified": p.IsVerified,
		}
		fc.Append(feature)
	}

	if b, ok := Bounds(properties); ok {
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}
