package geo

import (
	"encoding/json"
	"strconv"
	"strings"
)

// WKTToGeoJSON converts well-known text to GeoJSON. Supported geometry
// types: POINT, LINESTRING, POLYGON, MULTIPOINT, MULTILINESTRING,
// MULTIPOLYGON, GEOMETRYCOLLECTION. Returns "" on any parse failure.
//
// The parser is a recursive descent over parenthesis groups: find the
// outermost group, split its comma-separated members at depth zero, and
// recurse for multi-geometries and collections.
func WKTToGeoJSON(wkt string) string {
	tag, body, ok := splitWKT(wkt)
	if !ok {
		return ""
	}
	switch tag {
	case "POINT":
		coord, ok := parseCoordinate(body)
		if !ok {
			return ""
		}
		return marshalGeometry("Point", coord)
	case "LINESTRING":
		line, ok := parseCoordinateList(body)
		if !ok {
			return ""
		}
		return marshalGeometry("LineString", line)
	case "POLYGON":
		rings, ok := parseRingList(body)
		if !ok {
			return ""
		}
		return marshalGeometry("Polygon", rings)
	case "MULTIPOINT":
		points, ok := parseMultiPoint(body)
		if !ok {
			return ""
		}
		return marshalGeometry("MultiPoint", points)
	case "MULTILINESTRING":
		lines, ok := parseRingList(body)
		if !ok {
			return ""
		}
		return marshalGeometry("MultiLineString", lines)
	case "MULTIPOLYGON":
		var polygons [][][][2]float64
		for _, part := range splitDepthZero(body) {
			inner, ok := stripParens(part)
			if !ok {
				return ""
			}
			rings, ok := parseRingList(inner)
			if !ok {
				return ""
			}
			polygons = append(polygons, rings)
		}
		if polygons == nil {
			return ""
		}
		return marshalGeometry("MultiPolygon", polygons)
	case "GEOMETRYCOLLECTION":
		var geoms []json.RawMessage
		for _, part := range splitDepthZero(body) {
			g := WKTToGeoJSON(part)
			if g == "" {
				return ""
			}
			geoms = append(geoms, json.RawMessage(g))
		}
		if geoms == nil {
			return ""
		}
		b, err := json.Marshal(collection{Type: "GeometryCollection", Geometries: geoms})
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// splitWKT separates "TAG ( body )" into the uppercased tag and the text
// inside the outermost matching parens.
func splitWKT(wkt string) (tag, body string, ok bool) {
	s := strings.TrimSpace(wkt)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", false
	}
	tag = strings.ToUpper(strings.TrimSpace(s[:open]))
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if strings.TrimSpace(s[i+1:]) != "" {
					return "", "", false
				}
				return tag, s[open+1 : i], true
			}
		}
	}
	return "", "", false // unbalanced
}

// splitDepthZero splits on commas not enclosed in parens.
func splitDepthZero(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func stripParens(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// parseCoordinate parses one "lon lat" pair.
func parseCoordinate(s string) ([2]float64, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 {
		return [2]float64{}, false
	}
	lon, errA := strconv.ParseFloat(fields[0], 64)
	lat, errB := strconv.ParseFloat(fields[1], 64)
	if errA != nil || errB != nil {
		return [2]float64{}, false
	}
	return [2]float64{lon, lat}, true
}

func parseCoordinateList(s string) ([][2]float64, bool) {
	var coords [][2]float64
	for _, part := range splitDepthZero(s) {
		c, ok := parseCoordinate(part)
		if !ok {
			return nil, false
		}
		coords = append(coords, c)
	}
	return coords, coords != nil
}

func parseRingList(s string) ([][][2]float64, bool) {
	var rings [][][2]float64
	for _, part := range splitDepthZero(s) {
		inner, ok := stripParens(part)
		if !ok {
			return nil, false
		}
		ring, ok := parseCoordinateList(inner)
		if !ok {
			return nil, false
		}
		rings = append(rings, ring)
	}
	return rings, rings != nil
}

// parseMultiPoint accepts both MULTIPOINT forms: "(1 2), (3 4)" and
// "1 2, 3 4".
func parseMultiPoint(s string) ([][2]float64, bool) {
	var points [][2]float64
	for _, part := range splitDepthZero(s) {
		trimmed := strings.TrimSpace(part)
		if strings.HasPrefix(trimmed, "(") {
			inner, ok := stripParens(trimmed)
			if !ok {
				return nil, false
			}
			trimmed = inner
		}
		c, ok := parseCoordinate(trimmed)
		if !ok {
			return nil, false
		}
		points = append(points, c)
	}
	return points, points != nil
}
