package translate

import (
	"encoding/json"

	"github.com/roach88/estable/internal/esdsl"
	"github.com/roach88/estable/internal/geo"
	"github.com/roach88/estable/internal/mapping"
	"github.com/roach88/estable/internal/predicate"
)

// translateGeoRelate lowers a binary spatial relation. The column must
// be structurally geo-typed and the other side a parseable constant
// geometry; anything else is untranslatable rather than an error.
func (t *Translator) translateGeoRelate(pred predicate.GeoRelate, path string) (esdsl.Query, error) {
	field := leafField(path, pred.Column)
	if !mapping.IsGeo(t.schema.PathTypes[field]) {
		return nil, nil
	}
	geometry := geo.Normalize(pred.Geometry)
	if geometry == "" {
		return nil, nil
	}

	var relation string
	switch pred.Kind {
	case predicate.Within:
		relation = "contains"
		if pred.ColumnIsSubject {
			relation = "within"
		}
	case predicate.Contains:
		relation = "within"
		if pred.ColumnIsSubject {
			relation = "contains"
		}
	case predicate.Intersects:
		relation = "intersects"
	case predicate.Disjoint:
		relation = "disjoint"
	default:
		return nil, nil
	}

	// Column-within-envelope is the common axis-aligned case and has a
	// dedicated, cheaper query shape.
	if relation == "within" {
		if env, ok := geo.ParseEnvelope(geometry); ok {
			return esdsl.GeoBoundingBox{
				Field:       field,
				TopLeft:     esdsl.LatLon{Lat: env.YMax, Lon: env.XMin},
				BottomRight: esdsl.LatLon{Lat: env.YMin, Lon: env.XMax},
			}, nil
		}
	}
	return esdsl.GeoShape{
		Field:    field,
		Shape:    json.RawMessage(geometry),
		Relation: relation,
	}, nil
}

// translateGeoDistance lowers a distance comparison to a geo_distance
// query. Gt/GtEq ("farther than") negates the within-radius query.
func (t *Translator) translateGeoDistance(pred predicate.GeoDistance, path string) (esdsl.Query, error) {
	field := leafField(path, pred.Column)
	if !mapping.IsGeo(t.schema.PathTypes[field]) {
		return nil, nil
	}
	geometry := geo.Normalize(pred.Geometry)
	if geometry == "" {
		geometry = geo.PointToGeoJSON(pred.Geometry)
	}
	lon, lat, ok := geo.PointCoords(geometry)
	if !ok {
		return nil, nil
	}

	within := esdsl.GeoDistance{
		Field:  field,
		Center: esdsl.LatLon{Lat: lat, Lon: lon},
		Meters: pred.Meters,
	}
	switch pred.Op {
	case predicate.Lt, predicate.LtEq:
		return within, nil
	case predicate.Gt, predicate.GtEq:
		return esdsl.Bool{MustNot: []esdsl.Query{within}}, nil
	default:
		return nil, nil
	}
}
