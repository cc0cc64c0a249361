package esdsl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, q Query) string {
	t.Helper()
	out, err := json.Marshal(q)
	require.NoError(t, err)
	return string(out)
}

func TestMarshalLeafQueries(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "match all",
			query: MatchAll{},
			want:  `{"match_all":{}}`,
		},
		{
			name:  "term",
			query: Term{Field: "status.keyword", Value: "active"},
			want:  `{"term":{"status.keyword":"active"}}`,
		},
		{
			name:  "terms",
			query: Terms{Field: "tag", Values: []any{"a", "b"}},
			want:  `{"terms":{"tag":["a","b"]}}`,
		},
		{
			name:  "range",
			query: Range{Field: "age", Op: Gte, Value: 21},
			want:  `{"range":{"age":{"gte":21}}}`,
		},
		{
			name:  "exists",
			query: Exists{Field: "email"},
			want:  `{"exists":{"field":"email"}}`,
		},
		{
			name:  "prefix",
			query: Prefix{Field: "name", Value: "Jo"},
			want:  `{"prefix":{"name":{"value":"Jo"}}}`,
		},
		{
			name:  "wildcard case insensitive",
			query: Wildcard{Field: "name", Pattern: "J*n?", CaseInsensitive: true},
			want:  `{"wildcard":{"name":{"case_insensitive":true,"value":"J*n?"}}}`,
		},
		{
			name:  "raw passes through verbatim",
			query: Raw{Body: json.RawMessage(`{"match":{"body":"hello"}}`)},
			want:  `{"match":{"body":"hello"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, marshal(t, tt.query))
		})
	}
}

func TestMarshalBoolComposition(t *testing.T) {
	q := Bool{
		Must: []Query{
			Range{Field: "age", Op: Gt, Value: 30},
			Bool{
				Should: []Query{
					Term{Field: "city", Value: "Oslo"},
					Term{Field: "city", Value: "Bergen"},
				},
				MinimumShouldMatch: 1,
			},
		},
		MustNot: []Query{Exists{Field: "deleted_at"}},
	}

	want := `{
		"bool": {
			"must": [
				{"range": {"age": {"gt": 30}}},
				{"bool": {
					"should": [
						{"term": {"city": "Oslo"}},
						{"term": {"city": "Bergen"}}
					],
					"minimum_should_match": 1
				}}
			],
			"must_not": [{"exists": {"field": "deleted_at"}}]
		}
	}`
	assert.JSONEq(t, want, marshal(t, q))
}

func TestMarshalEmptyBoolOmitsClauses(t *testing.T) {
	assert.JSONEq(t, `{"bool":{}}`, marshal(t, Bool{}))
}

func TestMarshalGeoQueries(t *testing.T) {
	shape := json.RawMessage(`{"type":"Point","coordinates":[-73.9,40.7]}`)

	assert.JSONEq(t,
		`{"geo_shape":{"pin":{"shape":{"type":"Point","coordinates":[-73.9,40.7]},"relation":"intersects"}}}`,
		marshal(t, GeoShape{Field: "pin", Shape: shape, Relation: "intersects"}))

	assert.JSONEq(t,
		`{"geo_bounding_box":{"pin":{"top_left":{"lat":40,"lon":-80},"bottom_right":{"lat":30,"lon":-70}}}}`,
		marshal(t, GeoBoundingBox{
			Field:       "pin",
			TopLeft:     LatLon{Lat: 40, Lon: -80},
			BottomRight: LatLon{Lat: 30, Lon: -70},
		}))

	assert.JSONEq(t,
		`{"geo_distance":{"distance":"5000m","pin":{"lat":40.7,"lon":-73.9}}}`,
		marshal(t, GeoDistance{Field: "pin", Center: LatLon{Lat: 40.7, Lon: -73.9}, Meters: 5000}))
}

func TestMarshalIsDeterministic(t *testing.T) {
	q := Bool{Must: []Query{
		Term{Field: "b", Value: 1},
		Term{Field: "a", Value: 2},
	}}
	first := marshal(t, q)
	for i := 0; i < 8; i++ {
		assert.Equal(t, first, marshal(t, q))
	}
}
