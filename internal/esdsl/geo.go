package esdsl

import (
	"encoding/json"
	"fmt"
)

// LatLon is a named-coordinate point as the geo queries expect it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoShape matches documents whose geometry relates to a constant shape.
type GeoShape struct {
	Field    string
	Shape    json.RawMessage // GeoJSON geometry
	Relation string          // within, contains, intersects, disjoint
}

func (GeoShape) queryNode() {}

func (q GeoShape) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"geo_shape": map[string]any{
			q.Field: map[string]any{
				"shape":    q.Shape,
				"relation": q.Relation,
			},
		},
	})
}

// GeoBoundingBox matches points inside an axis-aligned rectangle.
// Strictly cheaper than the equivalent geo_shape within-envelope query.
type GeoBoundingBox struct {
	Field       string
	TopLeft     LatLon
	BottomRight LatLon
}

func (GeoBoundingBox) queryNode() {}

func (q GeoBoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"geo_bounding_box": map[string]any{
			q.Field: map[string]any{
				"top_left":     q.TopLeft,
				"bottom_right": q.BottomRight,
			},
		},
	})
}

// GeoDistance matches points within a radius of a center point. The
// radius is meters.
type GeoDistance struct {
	Field  string
	Center LatLon
	Meters float64
}

func (GeoDistance) queryNode() {}

func (q GeoDistance) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"geo_distance": map[string]any{
			"distance": fmt.Sprintf("%gm", q.Meters),
			q.Field:    q.Center,
		},
	})
}
