package mapping

import (
	"github.com/roach88/estable/internal/estype"
)

// Column is one top-level column of the resolved schema.
type Column struct {
	// Name is the column's short name (the path's last dot-segment).
	Name string

	// Path is the full dotted field path in the source documents.
	Path string

	// Type is the merged semantic type.
	Type estype.Type

	// ESType is the native type tag, empty for structural containers
	// that declare no explicit type.
	ESType string
}

// Schema is the merged view of every index matched by a pattern.
//
// Instances are cached by the schema cache and copied out to callers;
// callers receive value copies and must never see mutation through the
// cache (Clone enforces this).
type Schema struct {
	// Columns in first-seen order across the merged indices.
	Columns []Column

	// MappedPaths holds every dotted path the mappings declare,
	// including nested paths. Feeds unmapped-field extraction.
	MappedPaths map[string]struct{}

	// PathTypes maps each path with an explicit type tag to that tag.
	// Structural containers have no entry.
	PathTypes map[string]string

	// TextFields holds the paths of analyzed text fields. Exact-match
	// and range predicates against these are invalid unless the field
	// has a keyword sibling.
	TextFields map[string]struct{}

	// KeywordSiblings maps an analyzed text path to its exact-match
	// sibling path (the keyword-typed multi-field).
	KeywordSiblings map[string]string
}

func newSchema() *Schema {
	return &Schema{
		MappedPaths:     make(map[string]struct{}),
		PathTypes:       make(map[string]string),
		TextFields:      make(map[string]struct{}),
		KeywordSiblings: make(map[string]string),
	}
}

// Clone returns an independent copy. Semantic types are immutable value
// trees and are shared.
func (s *Schema) Clone() *Schema {
	out := &Schema{
		Columns:         make([]Column, len(s.Columns)),
		MappedPaths:     make(map[string]struct{}, len(s.MappedPaths)),
		PathTypes:       make(map[string]string, len(s.PathTypes)),
		TextFields:      make(map[string]struct{}, len(s.TextFields)),
		KeywordSiblings: make(map[string]string, len(s.KeywordSiblings)),
	}
	copy(out.Columns, s.Columns)
	for k := range s.MappedPaths {
		out.MappedPaths[k] = struct{}{}
	}
	for k, v := range s.PathTypes {
		out.PathTypes[k] = v
	}
	for k := range s.TextFields {
		out.TextFields[k] = struct{}{}
	}
	for k, v := range s.KeywordSiblings {
		out.KeywordSiblings[k] = v
	}
	return out
}

// Column returns the top-level column with the given name, or nil.
func (s *Schema) Column(name string) *Column {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i]
		}
	}
	return nil
}

// ApplyArrayPaths wraps each named column's type in a list. Called once
// after sampling, for the columns observed holding JSON arrays.
func (s *Schema) ApplyArrayPaths(paths map[string]struct{}) {
	for i := range s.Columns {
		if _, ok := paths[s.Columns[i].Path]; !ok {
			continue
		}
		if _, already := s.Columns[i].Type.(estype.List); already {
			continue
		}
		s.Columns[i].Type = estype.List{Elem: s.Columns[i].Type}
	}
}
