package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/estable/internal/estype"
)

// Elasticsearch native type tags with special handling elsewhere in the
// system. Geo-typed columns are string-typed at the schema level (GeoJSON
// text) but the decoder and the translator dispatch on the native tag.
const (
	TypeText     = "text"
	TypeKeyword  = "keyword"
	TypeNested   = "nested"
	TypeGeoPoint = "geo_point"
	TypeGeoShape = "geo_shape"
)

// IsGeo reports whether a native type tag is one of the two geo tags.
func IsGeo(tag string) bool {
	return tag == TypeGeoPoint || tag == TypeGeoShape
}

// scalarTypes maps native scalar type tags to semantic scalar kinds.
// Tags absent from this table (text, keyword, ip, geo tags, anything
// unrecognized) fall back to string - unknown types are never an error
// at this layer.
var scalarTypes = map[string]estype.ScalarKind{
	"long":       estype.Int64,
	"integer":    estype.Int32,
	"short":      estype.Int16,
	"byte":       estype.Int8,
	"double":     estype.Float64,
	"float":      estype.Float32,
	"half_float": estype.Float32,
	"boolean":    estype.Bool,
	"date":       estype.Timestamp,
}

// fieldDef is one parsed field definition from a mapping.
type fieldDef struct {
	typeTag    string
	properties json.RawMessage // nil if absent
	subFields  json.RawMessage // multi-field "fields" block, nil if absent
}

func parseFieldDef(raw []byte) (fieldDef, error) {
	members, err := objectMembers(raw)
	if err != nil {
		return fieldDef{}, err
	}
	var def fieldDef
	for _, m := range members {
		switch m.key {
		case "type":
			if err := json.Unmarshal(m.raw, &def.typeTag); err != nil {
				return fieldDef{}, fmt.Errorf("field type tag: %w", err)
			}
		case "properties":
			def.properties = m.raw
		case "fields":
			def.subFields = m.raw
		}
	}
	return def, nil
}

// semanticType converts one field definition into a semantic column type.
//
//   - A definition with properties is a struct of its sub-fields, in
//     declared order; empty properties degrade to string (no structure
//     could be inferred).
//   - The nested tag declares list-of-struct; without usable properties
//     it degrades to list-of-string.
//   - Scalars follow the scalarTypes table, defaulting to string.
func semanticType(def fieldDef) (estype.Type, error) {
	if def.typeTag == TypeNested {
		elem, err := propertiesStruct(def.properties)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			return estype.List{Elem: estype.Scalar{Kind: estype.String}}, nil
		}
		return estype.List{Elem: *elem}, nil
	}
	if def.properties != nil {
		st, err := propertiesStruct(def.properties)
		if err != nil {
			return nil, err
		}
		if st == nil {
			return estype.Scalar{Kind: estype.String}, nil
		}
		return *st, nil
	}
	if kind, ok := scalarTypes[def.typeTag]; ok {
		return estype.Scalar{Kind: kind}, nil
	}
	return estype.Scalar{Kind: estype.String}, nil
}

// propertiesStruct builds a struct type from a properties block, or nil
// if the block is absent or empty.
func propertiesStruct(properties json.RawMessage) (*estype.Struct, error) {
	if properties == nil {
		return nil, nil
	}
	members, err := objectMembers(properties)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	fields := make([]estype.Field, 0, len(members))
	for _, m := range members {
		child, err := parseFieldDef(m.raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", m.key, err)
		}
		typ, err := semanticType(child)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", m.key, err)
		}
		fields = append(fields, estype.Field{Name: m.key, Type: typ})
	}
	return &estype.Struct{Fields: fields}, nil
}
