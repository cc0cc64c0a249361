package decode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/estable/internal/mapping"
)

const testMapping = `{
	"idx": {"mappings": {"properties": {
		"count": {"type": "long"},
		"rank": {"type": "integer"},
		"level": {"type": "byte"},
		"ratio": {"type": "float"},
		"active": {"type": "boolean"},
		"created": {"type": "date"},
		"name": {"type": "keyword"},
		"location": {"type": "geo_point"},
		"area": {"type": "geo_shape"},
		"address": {"properties": {
			"city": {"type": "keyword"},
			"zip": {"type": "keyword"}
		}}
	}}}
}`

func testDecoder(t *testing.T) (*Decoder, *mapping.Schema) {
	t.Helper()
	schema, err := mapping.Resolve([]byte(testMapping))
	require.NoError(t, err)
	return New(schema), schema
}

func decodeColumn(t *testing.T, d *Decoder, schema *mapping.Schema, source, column string) any {
	t.Helper()
	doc, err := ParseDocument([]byte(source))
	require.NoError(t, err)
	col := schema.Column(column)
	require.NotNil(t, col)
	return d.Column(doc, *col)
}

func TestDecodeScalars(t *testing.T) {
	d, schema := testDecoder(t)

	tests := []struct {
		name   string
		source string
		column string
		want   any
	}{
		{name: "int64", source: `{"count": 42}`, column: "count", want: int64(42)},
		{name: "int32", source: `{"rank": 7}`, column: "rank", want: int32(7)},
		{name: "int8", source: `{"level": 3}`, column: "level", want: int8(3)},
		{name: "int8 overflow decodes null", source: `{"level": 1000}`, column: "level", want: nil},
		{name: "float from int json", source: `{"ratio": 3}`, column: "ratio", want: float32(3)},
		{name: "float32", source: `{"ratio": 0.5}`, column: "ratio", want: float32(0.5)},
		{name: "bool", source: `{"active": true}`, column: "active", want: true},
		{name: "string", source: `{"name": "ann"}`, column: "name", want: "ann"},
		{name: "number into string", source: `{"name": 5}`, column: "name", want: "5"},
		{name: "missing field", source: `{}`, column: "count", want: nil},
		{name: "explicit null", source: `{"count": null}`, column: "count", want: nil},
		{name: "type mismatch decodes null", source: `{"count": "many"}`, column: "count", want: nil},
		{name: "float into int decodes null", source: `{"count": 1.5}`, column: "count", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeColumn(t, d, schema, tt.source, tt.column)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeTimestamp(t *testing.T) {
	d, schema := testDecoder(t)

	got := decodeColumn(t, d, schema, `{"created": "2024-05-01T12:30:00Z"}`, "created")
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), got)

	got = decodeColumn(t, d, schema, `{"created": "2024-05-01"}`, "created")
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)

	// Epoch milliseconds.
	got = decodeColumn(t, d, schema, `{"created": 1714566600000}`, "created")
	assert.Equal(t, time.UnixMilli(1714566600000).UTC(), got)

	got = decodeColumn(t, d, schema, `{"created": "yesterday"}`, "created")
	assert.Nil(t, got)
}

func TestDecodeStruct(t *testing.T) {
	d, schema := testDecoder(t)

	got := decodeColumn(t, d, schema, `{"address": {"city": "Oslo"}}`, "address")
	assert.Equal(t, map[string]any{"city": "Oslo", "zip": nil}, got)

	got = decodeColumn(t, d, schema, `{"address": "not an object"}`, "address")
	assert.Nil(t, got)
}

func TestDecodeListWrapsLoneScalar(t *testing.T) {
	d, schema := testDecoder(t)
	schema.ApplyArrayPaths(map[string]struct{}{"name": {}})

	got := decodeColumn(t, d, schema, `{"name": ["a", "b"]}`, "name")
	assert.Equal(t, []any{"a", "b"}, got)

	// The store may emit a lone scalar for a multi-valued field.
	got = decodeColumn(t, d, schema, `{"name": "solo"}`, "name")
	assert.Equal(t, []any{"solo"}, got)
}

func TestDecodeGeo(t *testing.T) {
	d, schema := testDecoder(t)

	got := decodeColumn(t, d, schema, `{"location": {"lat": 40.7, "lon": -73.9}}`, "location")
	require.IsType(t, "", got)
	assert.JSONEq(t, `{"type":"Point","coordinates":[-73.9,40.7]}`, got.(string))

	// A two-element array is coordinates, not a multi-value.
	got = decodeColumn(t, d, schema, `{"location": [-73.9, 40.7]}`, "location")
	require.IsType(t, "", got)
	assert.JSONEq(t, `{"type":"Point","coordinates":[-73.9,40.7]}`, got.(string))

	got = decodeColumn(t, d, schema, `{"area": "LINESTRING (0 0, 1 1)"}`, "area")
	require.IsType(t, "", got)
	assert.JSONEq(t, `{"type":"LineString","coordinates":[[0,0],[1,1]]}`, got.(string))

	got = decodeColumn(t, d, schema, `{"area": "not a shape"}`, "area")
	assert.Nil(t, got)
}

func TestValueByPath(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"a": {"b": {"c": 1}}, "x": 2}`))
	require.NoError(t, err)

	assert.NotNil(t, ValueByPath(doc, "a.b.c"))
	assert.NotNil(t, ValueByPath(doc, "x"))
	assert.Nil(t, ValueByPath(doc, "a.b.missing"))
	assert.Nil(t, ValueByPath(doc, "x.y"), "scalar step ends the walk")
}
