// Package esdsl models the Elasticsearch Query DSL as an immutable value
// tree.
//
// Queries are plain nested sum-type values, built once by the translator
// and serialized once at the end via MarshalJSON. This is a sealed
// interface - only types in this package implement Query - so backend
// consumers can pattern-match exhaustively.
package esdsl

import (
	"encoding/json"
)

// Query is one node of the DSL tree.
type Query interface {
	queryNode() // Marker method - seals interface to this package
	json.Marshaler
}

// MatchAll matches every document.
type MatchAll struct{}

func (MatchAll) queryNode() {}

func (MatchAll) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"match_all": map[string]any{}})
}

// Term is an exact-match query on one field.
type Term struct {
	Field string
	Value any
}

func (Term) queryNode() {}

func (q Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"term": map[string]any{q.Field: q.Value}})
}

// Terms is a set-membership query on one field.
type Terms struct {
	Field  string
	Values []any
}

func (Terms) queryNode() {}

func (q Terms) MarshalJSON() ([]byte, error) {
	values := q.Values
	if values == nil {
		values = []any{}
	}
	return json.Marshal(map[string]any{"terms": map[string]any{q.Field: values}})
}

// RangeOp is a range bound operator.
type RangeOp string

const (
	Gt  RangeOp = "gt"
	Gte RangeOp = "gte"
	Lt  RangeOp = "lt"
	Lte RangeOp = "lte"
)

// Range is a single-bound range query. Comparisons translate one bound
// at a time; conjunctions combine them.
type Range struct {
	Field string
	Op    RangeOp
	Value any
}

func (Range) queryNode() {}

func (q Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"range": map[string]any{q.Field: map[string]any{string(q.Op): q.Value}},
	})
}

// Exists matches documents where the field is present and non-null.
type Exists struct {
	Field string
}

func (Exists) queryNode() {}

func (q Exists) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"exists": map[string]any{"field": q.Field}})
}

// Prefix matches values starting with a literal prefix. Cheaper than the
// equivalent trailing-wildcard query.
type Prefix struct {
	Field           string
	Value           string
	CaseInsensitive bool
}

func (Prefix) queryNode() {}

func (q Prefix) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"prefix": map[string]any{q.Field: fieldParams(q.Value, q.CaseInsensitive)},
	})
}

// Wildcard matches values against a pattern with * and ? wildcards.
type Wildcard struct {
	Field           string
	Pattern         string
	CaseInsensitive bool
}

func (Wildcard) queryNode() {}

func (q Wildcard) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"wildcard": map[string]any{q.Field: fieldParams(q.Pattern, q.CaseInsensitive)},
	})
}

func fieldParams(value string, caseInsensitive bool) map[string]any {
	params := map[string]any{"value": value}
	if caseInsensitive {
		params["case_insensitive"] = true
	}
	return params
}

// Bool combines sub-queries. Should clauses carry minimum_should_match
// so a disjunction requires at least one branch.
type Bool struct {
	Must               []Query
	Should             []Query
	MustNot            []Query
	MinimumShouldMatch int
}

func (Bool) queryNode() {}

func (q Bool) MarshalJSON() ([]byte, error) {
	clauses := make(map[string]any)
	if len(q.Must) > 0 {
		clauses["must"] = q.Must
	}
	if len(q.Should) > 0 {
		clauses["should"] = q.Should
	}
	if len(q.MustNot) > 0 {
		clauses["must_not"] = q.MustNot
	}
	if q.MinimumShouldMatch > 0 {
		clauses["minimum_should_match"] = q.MinimumShouldMatch
	}
	return json.Marshal(map[string]any{"bool": clauses})
}

// Raw is a pre-serialized query document, used for the caller-supplied
// base predicate which is passed through untouched.
type Raw struct {
	Body json.RawMessage
}

func (Raw) queryNode() {}

func (q Raw) MarshalJSON() ([]byte, error) {
	if len(q.Body) == 0 {
		return []byte("null"), nil
	}
	return q.Body, nil
}
