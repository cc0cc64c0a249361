package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointToGeoJSON(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "lat lon object",
			input: map[string]any{"lat": json.Number("40.7"), "lon": json.Number("-73.9")},
			want:  `{"type":"Point","coordinates":[-73.9,40.7]}`,
		},
		{
			name:  "lon lat array",
			input: []any{json.Number("-73.9"), json.Number("40.7")},
			want:  `{"type":"Point","coordinates":[-73.9,40.7]}`,
		},
		{
			name:  "lat,lon string",
			input: "40.7,-73.9",
			want:  `{"type":"Point","coordinates":[-73.9,40.7]}`,
		},
		{
			name:  "wkt point",
			input: "POINT (-73.9 40.7)",
			want:  `{"type":"Point","coordinates":[-73.9,40.7]}`,
		},
		{
			name:  "garbage string",
			input: "not a point",
			want:  "",
		},
		{
			name:  "three element array",
			input: []any{json.Number("1"), json.Number("2"), json.Number("3")},
			want:  "",
		},
		{
			name:  "object missing lon",
			input: map[string]any{"lat": json.Number("40.7")},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointToGeoJSON(tt.input)
			if tt.want == "" {
				assert.Empty(t, got)
			} else {
				assert.JSONEq(t, tt.want, got)
			}
		})
	}
}

func TestShapeToGeoJSON(t *testing.T) {
	t.Run("geojson object passes through", func(t *testing.T) {
		shape := map[string]any{
			"type":        "Point",
			"coordinates": []any{json.Number("-73.9"), json.Number("40.7")},
		}
		got := ShapeToGeoJSON(shape)
		assert.JSONEq(t, `{"type":"Point","coordinates":[-73.9,40.7]}`, got)
	})

	t.Run("wkt string", func(t *testing.T) {
		got := ShapeToGeoJSON("LINESTRING (0 0, 1 1)")
		assert.JSONEq(t, `{"type":"LineString","coordinates":[[0,0],[1,1]]}`, got)
	})

	t.Run("unparseable", func(t *testing.T) {
		assert.Empty(t, ShapeToGeoJSON("POLYGON (unbalanced"))
		assert.Empty(t, ShapeToGeoJSON(42))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("geojson text", func(t *testing.T) {
		got := Normalize(`{"type": "Point", "coordinates": [1, 2]}`)
		assert.JSONEq(t, `{"type":"Point","coordinates":[1,2]}`, got)
	})
	t.Run("wkt text", func(t *testing.T) {
		got := Normalize("POINT (1 2)")
		assert.JSONEq(t, `{"type":"Point","coordinates":[1,2]}`, got)
	})
	t.Run("invalid", func(t *testing.T) {
		assert.Empty(t, Normalize("{broken"))
		assert.Empty(t, Normalize(""))
	})
}

func TestEnvelope(t *testing.T) {
	text := MakeEnvelope(-80, 30, -70, 40)
	assert.JSONEq(t, `{"type":"envelope","coordinates":[[-80,40],[-70,30]]}`, text)

	env, ok := ParseEnvelope(text)
	require.True(t, ok)
	assert.Equal(t, Envelope{XMin: -80, YMin: 30, XMax: -70, YMax: 40}, env)

	_, ok = ParseEnvelope(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)
	assert.False(t, ok, "non-envelope geometry is not an envelope")
}

func TestPointCoords(t *testing.T) {
	lon, lat, ok := PointCoords(`{"type":"Point","coordinates":[-73.9,40.7]}`)
	require.True(t, ok)
	assert.Equal(t, -73.9, lon)
	assert.Equal(t, 40.7, lat)

	_, _, ok = PointCoords(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)
	assert.False(t, ok)
}
