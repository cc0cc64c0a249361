package geo

import (
	"encoding/json"
	"strings"
)

// Envelope is an axis-aligned rectangle. Elasticsearch encodes it as a
// GeoJSON-style geometry with type "envelope" and two corners:
// [[xmin, ymax], [xmax, ymin]] (upper-left, lower-right).
type Envelope struct {
	XMin, YMin, XMax, YMax float64
}

// MakeEnvelope builds the envelope geometry for the given bounds.
func MakeEnvelope(xmin, ymin, xmax, ymax float64) string {
	return marshalGeometry("envelope", [][2]float64{{xmin, ymax}, {xmax, ymin}})
}

// ParseEnvelope recognizes an envelope-typed GeoJSON geometry. Returns
// false for any other geometry, enabling the caller to fall back to a
// general shape query.
func ParseEnvelope(geojson string) (Envelope, bool) {
	var g struct {
		Type        string           `json:"type"`
		Coordinates [][2]json.Number `json:"coordinates"`
	}
	if err := json.Unmarshal([]byte(geojson), &g); err != nil {
		return Envelope{}, false
	}
	if !strings.EqualFold(g.Type, "envelope") || len(g.Coordinates) != 2 {
		return Envelope{}, false
	}
	xmin, errA := g.Coordinates[0][0].Float64()
	ymax, errB := g.Coordinates[0][1].Float64()
	xmax, errC := g.Coordinates[1][0].Float64()
	ymin, errD := g.Coordinates[1][1].Float64()
	if errA != nil || errB != nil || errC != nil || errD != nil {
		return Envelope{}, false
	}
	return Envelope{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}, true
}

// PointCoords extracts lon/lat from a GeoJSON Point. Returns false for
// any other geometry.
func PointCoords(geojson string) (lon, lat float64, ok bool) {
	var g struct {
		Type        string        `json:"type"`
		Coordinates []json.Number `json:"coordinates"`
	}
	if err := json.Unmarshal([]byte(geojson), &g); err != nil {
		return 0, 0, false
	}
	if !strings.EqualFold(g.Type, "point") || len(g.Coordinates) != 2 {
		return 0, 0, false
	}
	lon, errA := g.Coordinates[0].Float64()
	lat, errB := g.Coordinates[1].Float64()
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return lon, lat, true
}
