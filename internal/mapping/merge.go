package mapping

import (
	"fmt"
	"strings"

	"github.com/roach88/estable/internal/estype"
)

// Resolve merges the raw body of a mapping fetch response - an object of
// index name to {"mappings": {"properties": {...}}} - into one Schema.
//
// Indices are walked in document order, columns keep first-seen order,
// and overlapping struct columns are unioned. A non-container type
// disagreement between two indices returns a ConflictError.
func Resolve(raw []byte) (*Schema, error) {
	indices, err := objectMembers(raw)
	if err != nil {
		return nil, fmt.Errorf("parse mapping response: %w", err)
	}

	schema := newSchema()
	firstIndex := make(map[string]string) // column path -> index that introduced it

	for _, idx := range indices {
		props, err := indexProperties(idx.raw)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.key, err)
		}
		if props == nil {
			continue // index with an empty mapping contributes nothing
		}
		members, err := objectMembers(props)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.key, err)
		}
		for _, m := range members {
			def, err := parseFieldDef(m.raw)
			if err != nil {
				return nil, fmt.Errorf("index %q field %q: %w", idx.key, m.key, err)
			}
			typ, err := semanticType(def)
			if err != nil {
				return nil, fmt.Errorf("index %q field %q: %w", idx.key, m.key, err)
			}

			if existing := schema.Column(m.key); existing != nil {
				merged, err := mergeColumn(existing, typ, firstIndex[m.key], idx.key)
				if err != nil {
					return nil, err
				}
				existing.Type = merged
			} else {
				schema.Columns = append(schema.Columns, Column{
					Name:   lastSegment(m.key),
					Path:   m.key,
					Type:   typ,
					ESType: def.typeTag,
				})
				firstIndex[m.key] = idx.key
			}
			collectPaths(schema, m.key, def)
		}
	}
	return schema, nil
}

// indexProperties digs mappings.properties out of one index's entry,
// returning nil when the index declares no fields.
func indexProperties(raw []byte) ([]byte, error) {
	mappings, found, err := objectMember(raw, "mappings")
	if err != nil || !found {
		return nil, err
	}
	props, found, err := objectMember(mappings, "properties")
	if err != nil || !found {
		return nil, err
	}
	return props, nil
}

// mergeColumn unions a repeated column's type with its existing entry,
// or fails with a ConflictError locating the incompatible sub-path.
func mergeColumn(existing *Column, typ estype.Type, indexA, indexB string) (estype.Type, error) {
	if sub, ta, tb, bad := estype.Conflict(existing.Type, typ); bad {
		path := existing.Path
		if sub != "" {
			path = path + "." + sub
		}
		return nil, &ConflictError{
			Path:   path,
			IndexA: indexA,
			TypeA:  ta.String(),
			IndexB: indexB,
			TypeB:  tb.String(),
		}
	}
	return estype.Merge(existing.Type, typ), nil
}

// collectPaths records the path-level metadata the sampler, decoder, and
// translator consume: the mapped-path set, native tags, analyzed text
// fields, and keyword siblings. First-seen tags win on repeats.
func collectPaths(s *Schema, path string, def fieldDef) {
	s.MappedPaths[path] = struct{}{}
	if def.typeTag != "" {
		if _, seen := s.PathTypes[path]; !seen {
			s.PathTypes[path] = def.typeTag
		}
	}
	if def.typeTag == TypeText {
		s.TextFields[path] = struct{}{}
		if sibling := keywordSibling(path, def); sibling != "" {
			if _, seen := s.KeywordSiblings[path]; !seen {
				s.KeywordSiblings[path] = sibling
				s.PathTypes[sibling] = TypeKeyword
			}
		}
	}
	if def.properties == nil {
		return
	}
	children, err := objectMembers(def.properties)
	if err != nil {
		return // already surfaced by semanticType
	}
	for _, child := range children {
		childDef, err := parseFieldDef(child.raw)
		if err != nil {
			continue
		}
		collectPaths(s, path+"."+child.key, childDef)
	}
}

// keywordSibling returns the exact-match sibling path for an analyzed
// text field: the first keyword-typed entry of its multi-field block.
func keywordSibling(path string, def fieldDef) string {
	if def.subFields == nil {
		return ""
	}
	subs, err := objectMembers(def.subFields)
	if err != nil {
		return ""
	}
	for _, sub := range subs {
		subDef, err := parseFieldDef(sub.raw)
		if err != nil {
			continue
		}
		if subDef.typeTag == TypeKeyword {
			return path + "." + sub.key
		}
	}
	return ""
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
