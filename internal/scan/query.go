package scan

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/estable/internal/esdsl"
)

// BuildSearchBody assembles the final search request: the pushed-down
// query merged with the caller's base query via bool.must, falling back
// to match_all when neither exists. projection lists the _source paths
// to fetch; nil fetches the full source.
func BuildSearchBody(pushed esdsl.Query, base json.RawMessage, projection []string, size int) ([]byte, error) {
	var query esdsl.Query
	switch {
	case pushed != nil && len(base) > 0:
		query = esdsl.Bool{Must: []esdsl.Query{esdsl.Raw{Body: base}, pushed}}
	case pushed != nil:
		query = pushed
	case len(base) > 0:
		query = esdsl.Raw{Body: base}
	default:
		query = esdsl.MatchAll{}
	}

	body := map[string]any{"query": query}
	if projection != nil {
		body["_source"] = projection
	}
	if size > 0 {
		body["size"] = size
	}
	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("build search body: %w", err)
	}
	return out, nil
}

// Projection computes the minimal _source path set for the projected
// output columns. The identifier column lives outside _source; columns
// used only in already-pushed predicates are simply not in needed and
// never fetched. Projecting the residual column forces the full source
// (nil), since the residual is everything the schema does not cover.
func Projection(table *Table, needed []string) []string {
	paths := make([]string, 0, len(needed))
	for _, name := range needed {
		switch name {
		case IDColumn:
			continue
		case UnmappedColumn:
			return nil
		}
		if col := table.Schema.Column(name); col != nil {
			paths = append(paths, col.Path)
		}
	}
	return paths
}
