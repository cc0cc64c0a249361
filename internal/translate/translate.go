// Package translate lowers relational predicate trees into the
// Elasticsearch Query DSL.
//
// Translation is best-effort: a construct the translator does not
// recognize yields a nil query with a nil error, and the host evaluates
// that predicate locally after the scan. The only hard error is
// TextFieldError (see errors.go).
package translate

import (
	"time"

	"github.com/roach88/estable/internal/esdsl"
	"github.com/roach88/estable/internal/mapping"
	"github.com/roach88/estable/internal/predicate"
)

// Translator lowers predicates against one resolved schema. Translators
// are stateless beyond the schema metadata and safe for concurrent use.
type Translator struct {
	schema *mapping.Schema
}

// New creates a Translator over a resolved schema.
func New(schema *mapping.Schema) *Translator {
	return &Translator{schema: schema}
}

// Translate lowers a predicate tree to a DSL query.
// Returns (nil, nil) when the tree is empty or not translatable.
func (t *Translator) Translate(p predicate.Predicate) (esdsl.Query, error) {
	return t.translate(p, "")
}

// translate dispatches one node. path carries the field path accumulated
// by enclosing Nested nodes; leaves fall back to their own Column when
// it is empty.
func (t *Translator) translate(p predicate.Predicate, path string) (esdsl.Query, error) {
	switch pred := p.(type) {
	case predicate.Comparison:
		return t.translateComparison(pred, path)
	case *predicate.Comparison:
		return t.translateComparison(*pred, path)
	case predicate.In:
		return t.translateIn(pred, path)
	case *predicate.In:
		return t.translateIn(*pred, path)
	case predicate.IsNull:
		field := leafField(path, pred.Column)
		return esdsl.Bool{MustNot: []esdsl.Query{esdsl.Exists{Field: field}}}, nil
	case *predicate.IsNull:
		field := leafField(path, pred.Column)
		return esdsl.Bool{MustNot: []esdsl.Query{esdsl.Exists{Field: field}}}, nil
	case predicate.IsNotNull:
		return esdsl.Exists{Field: leafField(path, pred.Column)}, nil
	case *predicate.IsNotNull:
		return esdsl.Exists{Field: leafField(path, pred.Column)}, nil
	case predicate.Like:
		return t.translateLike(pred, path)
	case *predicate.Like:
		return t.translateLike(*pred, path)
	case predicate.And:
		return t.translateAnd(pred, path)
	case *predicate.And:
		return t.translateAnd(*pred, path)
	case predicate.Or:
		return t.translateOr(pred, path)
	case *predicate.Or:
		return t.translateOr(*pred, path)
	case predicate.Nested:
		base := leafField(path, pred.Column)
		return t.translate(pred.Inner, base+"."+pred.Field)
	case *predicate.Nested:
		base := leafField(path, pred.Column)
		return t.translate(pred.Inner, base+"."+pred.Field)
	case predicate.GeoRelate:
		return t.translateGeoRelate(pred, path)
	case *predicate.GeoRelate:
		return t.translateGeoRelate(*pred, path)
	case predicate.GeoDistance:
		return t.translateGeoDistance(pred, path)
	case *predicate.GeoDistance:
		return t.translateGeoDistance(*pred, path)
	default:
		return nil, nil // unrecognized: host evaluates locally
	}
}

func (t *Translator) translateComparison(pred predicate.Comparison, path string) (esdsl.Query, error) {
	field, err := t.exactField(leafField(path, pred.Column))
	if err != nil {
		return nil, err
	}
	value := constValue(pred.Value)
	switch pred.Op {
	case predicate.Eq:
		return esdsl.Term{Field: field, Value: value}, nil
	case predicate.NotEq:
		return esdsl.Bool{MustNot: []esdsl.Query{esdsl.Term{Field: field, Value: value}}}, nil
	case predicate.Lt:
		return esdsl.Range{Field: field, Op: esdsl.Lt, Value: value}, nil
	case predicate.LtEq:
		return esdsl.Range{Field: field, Op: esdsl.Lte, Value: value}, nil
	case predicate.Gt:
		return esdsl.Range{Field: field, Op: esdsl.Gt, Value: value}, nil
	case predicate.GtEq:
		return esdsl.Range{Field: field, Op: esdsl.Gte, Value: value}, nil
	default:
		return nil, nil
	}
}

func (t *Translator) translateIn(pred predicate.In, path string) (esdsl.Query, error) {
	field, err := t.exactField(leafField(path, pred.Column))
	if err != nil {
		return nil, err
	}
	values := make([]any, len(pred.Values))
	for i, v := range pred.Values {
		values[i] = constValue(v)
	}
	return esdsl.Terms{Field: field, Values: values}, nil
}

// translateAnd drops untranslatable children: the store returns a
// superset and the host re-applies the full predicate, so a partial
// conjunction is still correct.
func (t *Translator) translateAnd(pred predicate.And, path string) (esdsl.Query, error) {
	var children []esdsl.Query
	for _, child := range pred.Children {
		q, err := t.translate(child, path)
		if err != nil {
			return nil, err
		}
		if q != nil {
			children = append(children, q)
		}
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	default:
		return esdsl.Bool{Must: children}, nil
	}
}

// translateOr is all-or-nothing: dropping one branch of a disjunction
// would exclude rows matching only that branch, so any untranslatable
// child makes the whole disjunction untranslatable.
func (t *Translator) translateOr(pred predicate.Or, path string) (esdsl.Query, error) {
	var children []esdsl.Query
	for _, child := range pred.Children {
		q, err := t.translate(child, path)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, nil
		}
		children = append(children, q)
	}
	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	default:
		return esdsl.Bool{Should: children, MinimumShouldMatch: 1}, nil
	}
}

// exactField substitutes the keyword sibling for analyzed text fields.
// A text field with no sibling is a hard TextFieldError.
func (t *Translator) exactField(field string) (string, error) {
	if _, analyzed := t.schema.TextFields[field]; !analyzed {
		return field, nil
	}
	if sibling, ok := t.schema.KeywordSiblings[field]; ok {
		return sibling, nil
	}
	return "", &TextFieldError{Field: field}
}

// leafField resolves a leaf's field path: the accumulated Nested path
// wins, otherwise the leaf names its own column.
func leafField(path, column string) string {
	if path != "" {
		return path
	}
	return column
}

// constValue converts a predicate constant to its DSL representation.
// Dates serialize as ISO 8601 in UTC; everything else passes through.
func constValue(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	return v
}
