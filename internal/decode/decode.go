// Package decode performs type-directed conversion of raw document
// values into column values, plus extraction of the residual fields the
// schema does not cover.
//
// Decoding is lossy but total: a value that does not fit its declared
// target type becomes null. A malformed document must never abort a
// scan that is already streaming rows.
package decode

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/estable/internal/estype"
	"github.com/roach88/estable/internal/geo"
	"github.com/roach88/estable/internal/mapping"
)

// Decoder decodes document values against one resolved schema. Decoders
// hold no mutable state and are safe for concurrent use.
type Decoder struct {
	schema *mapping.Schema
}

// New creates a Decoder over a resolved schema.
func New(schema *mapping.Schema) *Decoder {
	return &Decoder{schema: schema}
}

// ParseDocument decodes a raw _source body. Numbers stay json.Number so
// integer width and float distinctions survive until type dispatch.
func ParseDocument(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Column extracts and decodes one column's value from a document.
func (d *Decoder) Column(doc map[string]any, col mapping.Column) any {
	return d.decode(ValueByPath(doc, col.Path), col.Type, col.Path)
}

// decode converts one raw value. Priority order matters: null first,
// then list wrapping (the store emits lone scalars for multi-valued
// fields), then the geo tags, then kind dispatch.
func (d *Decoder) decode(raw any, typ estype.Type, path string) any {
	if raw == nil {
		return nil
	}

	if list, ok := typ.(estype.List); ok {
		elems, isArray := raw.([]any)
		if !isArray {
			elems = []any{raw}
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = d.decode(e, list.Elem, path)
		}
		return out
	}

	switch d.schema.PathTypes[path] {
	case mapping.TypeGeoPoint:
		if g := geo.PointToGeoJSON(raw); g != "" {
			return g
		}
		return nil
	case mapping.TypeGeoShape:
		if g := geo.ShapeToGeoJSON(raw); g != "" {
			return g
		}
		return nil
	}

	switch t := typ.(type) {
	case estype.Scalar:
		return decodeScalar(raw, t.Kind)
	case estype.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil
		}
		out := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			child, present := obj[f.Name]
			if !present {
				out[f.Name] = nil
				continue
			}
			out[f.Name] = d.decode(child, f.Type, path+"."+f.Name)
		}
		return out
	default:
		return nil
	}
}

func decodeScalar(raw any, kind estype.ScalarKind) any {
	switch kind {
	case estype.String:
		switch v := raw.(type) {
		case string:
			return v
		case json.Number:
			return v.String()
		case bool:
			return strconv.FormatBool(v)
		default:
			// Opaque fallback columns can hold structure; keep it as
			// JSON text.
			b, err := json.Marshal(v)
			if err != nil {
				return nil
			}
			return string(b)
		}
	case estype.Bool:
		if v, ok := raw.(bool); ok {
			return v
		}
		return nil
	case estype.Int8:
		return decodeInt(raw, -1<<7, 1<<7-1, func(n int64) any { return int8(n) })
	case estype.Int16:
		return decodeInt(raw, -1<<15, 1<<15-1, func(n int64) any { return int16(n) })
	case estype.Int32:
		return decodeInt(raw, -1<<31, 1<<31-1, func(n int64) any { return int32(n) })
	case estype.Int64:
		return decodeInt(raw, -1<<63, 1<<63-1, func(n int64) any { return n })
	case estype.Float32:
		if f, ok := numberFloat(raw); ok {
			return float32(f)
		}
		return nil
	case estype.Float64:
		if f, ok := numberFloat(raw); ok {
			return f
		}
		return nil
	case estype.Timestamp:
		return decodeTimestamp(raw)
	default:
		return nil
	}
}

func decodeInt(raw any, min, max int64, cast func(int64) any) any {
	num, ok := raw.(json.Number)
	if !ok {
		return nil
	}
	n, err := num.Int64()
	if err != nil || n < min || n > max {
		return nil
	}
	return cast(n)
}

func numberFloat(raw any) (float64, bool) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := num.Float64()
	return f, err == nil
}

// timestampLayouts covers the ISO 8601 shapes the store emits, most
// specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decodeTimestamp parses an ISO 8601 string or an epoch-milliseconds
// integer.
func decodeTimestamp(raw any) any {
	switch v := raw.(type) {
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts.UTC()
			}
		}
		return nil
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return nil
		}
		return time.UnixMilli(ms).UTC()
	default:
		return nil
	}
}

// ValueByPath walks a dotted path through nested objects. Returns nil
// for any missing or non-object step.
func ValueByPath(doc map[string]any, path string) any {
	segments := strings.Split(path, ".")
	var current any = doc
	for _, seg := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return current
}
