// Package geo normalizes the geometry representations Elasticsearch
// stores and accepts into GeoJSON text.
//
// Points arrive as {"lat": .., "lon": ..} objects, [lon, lat] arrays,
// "lat,lon" strings, or WKT POINT text. Shapes arrive as GeoJSON objects
// or WKT text. All conversions are total: unparseable input produces an
// empty string, never an error, because a malformed stored value must
// not abort a scan.
package geo

import (
	"encoding/json"
	"strconv"
	"strings"
)

// geometry is the GeoJSON envelope for a single geometry.
type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type collection struct {
	Type       string            `json:"type"`
	Geometries []json.RawMessage `json:"geometries"`
}

func marshalGeometry(typ string, coords any) string {
	b, err := json.Marshal(geometry{Type: typ, Coordinates: coords})
	if err != nil {
		return ""
	}
	return string(b)
}

// PointToGeoJSON normalizes any of the four accepted point encodings to
// a GeoJSON Point. Returns "" if the value is not a recognizable point.
func PointToGeoJSON(v any) string {
	switch val := v.(type) {
	case map[string]any:
		lat, okLat := toFloat(val["lat"])
		lon, okLon := toFloat(val["lon"])
		if !okLat || !okLon {
			return ""
		}
		return marshalGeometry("Point", []float64{lon, lat})
	case []any:
		if len(val) != 2 {
			return ""
		}
		lon, okLon := toFloat(val[0])
		lat, okLat := toFloat(val[1])
		if !okLon || !okLat {
			return ""
		}
		return marshalGeometry("Point", []float64{lon, lat})
	case string:
		s := strings.TrimSpace(val)
		if strings.HasPrefix(strings.ToUpper(s), "POINT") {
			return WKTToGeoJSON(s)
		}
		// "lat,lon" string form.
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return ""
		}
		lat, errA := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, errB := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errA != nil || errB != nil {
			return ""
		}
		return marshalGeometry("Point", []float64{lon, lat})
	default:
		return ""
	}
}

// ShapeToGeoJSON normalizes a stored shape value to GeoJSON text. An
// object is assumed to already be GeoJSON and is re-serialized as-is;
// a string is GeoJSON text or WKT.
func ShapeToGeoJSON(v any) string {
	switch val := v.(type) {
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	case string:
		return Normalize(val)
	default:
		return ""
	}
}

// Normalize converts constant geometry text - a GeoJSON object or WKT -
// to GeoJSON. Returns "" if the text parses as neither.
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if s[0] == '{' {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return ""
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return WKTToGeoJSON(s)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
