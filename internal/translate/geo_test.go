package translate

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/estable/internal/geo"
	"github.com/roach88/estable/internal/predicate"
)

const testPolygon = "POLYGON ((-80 30, -70 30, -70 40, -80 40, -80 30))"

func TestTranslateGeoRelate(t *testing.T) {
	tr := testTranslator(t)

	tests := []struct {
		name string
		pred predicate.GeoRelate
		want string
	}{
		{
			name: "column within shape",
			pred: predicate.GeoRelate{Kind: predicate.Within, Column: "area", ColumnIsSubject: true, Geometry: testPolygon},
			want: `{"geo_shape":{"area":{"relation":"within","shape":{"type":"Polygon","coordinates":[[[-80,30],[-70,30],[-70,40],[-80,40],[-80,30]]]}}}}`,
		},
		{
			name: "shape within column flips to contains",
			pred: predicate.GeoRelate{Kind: predicate.Within, Column: "area", ColumnIsSubject: false, Geometry: testPolygon},
			want: `{"geo_shape":{"area":{"relation":"contains","shape":{"type":"Polygon","coordinates":[[[-80,30],[-70,30],[-70,40],[-80,40],[-80,30]]]}}}}`,
		},
		{
			name: "column contains shape",
			pred: predicate.GeoRelate{Kind: predicate.Contains, Column: "area", ColumnIsSubject: true, Geometry: testPolygon},
			want: `{"geo_shape":{"area":{"relation":"contains","shape":{"type":"Polygon","coordinates":[[[-80,30],[-70,30],[-70,40],[-80,40],[-80,30]]]}}}}`,
		},
		{
			name: "column argument of contains flips to within",
			pred: predicate.GeoRelate{Kind: predicate.Contains, Column: "area", ColumnIsSubject: false, Geometry: testPolygon},
			want: `{"geo_shape":{"area":{"relation":"within","shape":{"type":"Polygon","coordinates":[[[-80,30],[-70,30],[-70,40],[-80,40],[-80,30]]]}}}}`,
		},
		{
			name: "intersects is symmetric",
			pred: predicate.GeoRelate{Kind: predicate.Intersects, Column: "area", ColumnIsSubject: false, Geometry: "POINT (-75 35)"},
			want: `{"geo_shape":{"area":{"relation":"intersects","shape":{"type":"Point","coordinates":[-75,35]}}}}`,
		},
		{
			name: "disjoint is symmetric",
			pred: predicate.GeoRelate{Kind: predicate.Disjoint, Column: "area", ColumnIsSubject: true, Geometry: "POINT (-75 35)"},
			want: `{"geo_shape":{"area":{"relation":"disjoint","shape":{"type":"Point","coordinates":[-75,35]}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tr.Translate(tt.pred)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, mustJSON(t, q))
		})
	}
}

func TestTranslateGeoWithinEnvelopeUsesBoundingBox(t *testing.T) {
	tr := testTranslator(t)

	q, err := tr.Translate(predicate.GeoRelate{
		Kind:            predicate.Within,
		Column:          "location",
		ColumnIsSubject: true,
		Geometry:        geo.MakeEnvelope(-80, 30, -70, 40),
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"geo_bounding_box":{"location":{"top_left":{"lat":40,"lon":-80},"bottom_right":{"lat":30,"lon":-70}}}}`,
		mustJSON(t, q))
}

func TestTranslateGeoEnvelopeContainsStaysShapeQuery(t *testing.T) {
	tr := testTranslator(t)

	// The bounding-box shortcut applies only to the within relation.
	q, err := tr.Translate(predicate.GeoRelate{
		Kind:            predicate.Contains,
		Column:          "area",
		ColumnIsSubject: true,
		Geometry:        geo.MakeEnvelope(-80, 30, -70, 40),
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, q)), &doc))
	assert.Contains(t, doc, "geo_shape")
}

func TestTranslateGeoDistance(t *testing.T) {
	tr := testTranslator(t)

	within := `{"geo_distance":{"distance":"5000m","location":{"lat":40.7,"lon":-73.9}}}`
	tests := []struct {
		name string
		op   predicate.CompareOp
		want string
	}{
		{name: "less than", op: predicate.Lt, want: within},
		{name: "less or equal", op: predicate.LtEq, want: within},
		{name: "greater than negates", op: predicate.Gt, want: `{"bool":{"must_not":[` + within + `]}}`},
		{name: "greater or equal negates", op: predicate.GtEq, want: `{"bool":{"must_not":[` + within + `]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tr.Translate(predicate.GeoDistance{
				Column:   "location",
				Geometry: "POINT (-73.9 40.7)",
				Op:       tt.op,
				Meters:   5000,
			})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, mustJSON(t, q))
		})
	}
}

func TestTranslateGeoUntranslatableCases(t *testing.T) {
	tr := testTranslator(t)

	tests := []struct {
		name string
		pred predicate.Predicate
	}{
		{
			name: "relation on non-geo column",
			pred: predicate.GeoRelate{Kind: predicate.Within, Column: "name", ColumnIsSubject: true, Geometry: "POINT (1 2)"},
		},
		{
			name: "unparseable geometry",
			pred: predicate.GeoRelate{Kind: predicate.Within, Column: "area", ColumnIsSubject: true, Geometry: "CIRCLE (1 2, 3)"},
		},
		{
			name: "distance equality",
			pred: predicate.GeoDistance{Column: "location", Geometry: "POINT (1 2)", Op: predicate.Eq, Meters: 10},
		},
		{
			name: "distance with non-point geometry",
			pred: predicate.GeoDistance{Column: "location", Geometry: testPolygon, Op: predicate.Lt, Meters: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tr.Translate(tt.pred)
			require.NoError(t, err)
			assert.Nil(t, q)
		})
	}
}

// Golden files pin the exact serialized DSL for representative queries.
// Regenerate with: go test ./internal/translate -update
func TestTranslateGolden(t *testing.T) {
	tr := testTranslator(t)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name string
		pred predicate.Predicate
	}{
		{
			name: "and_range_term",
			pred: predicate.And{Children: []predicate.Predicate{
				predicate.Comparison{Column: "age", Op: predicate.Gt, Value: int64(30)},
				predicate.Comparison{Column: "status", Op: predicate.Eq, Value: "active"},
			}},
		},
		{
			name: "like_prefix",
			pred: predicate.Like{Column: "name", Pattern: "J%"},
		},
		{
			name: "within_envelope",
			pred: predicate.GeoRelate{
				Kind:            predicate.Within,
				Column:          "location",
				ColumnIsSubject: true,
				Geometry:        geo.MakeEnvelope(-80, 30, -70, 40),
			},
		},
		{
			name: "within_polygon",
			pred: predicate.GeoRelate{
				Kind:            predicate.Within,
				Column:          "area",
				ColumnIsSubject: true,
				Geometry:        testPolygon,
			},
		},
		{
			name: "distance_beyond",
			pred: predicate.GeoDistance{
				Column:   "location",
				Geometry: "POINT (-73.9 40.7)",
				Op:       predicate.Gt,
				Meters:   5000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tr.Translate(tt.pred)
			require.NoError(t, err)
			data, err := json.Marshal(q)
			require.NoError(t, err)
			g.Assert(t, tt.name, data)
		})
	}
}
