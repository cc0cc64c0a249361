// Package sample completes the resolved schema with what mappings alone
// cannot say: which fields actually hold arrays at runtime (the store
// does not distinguish scalar from multi-valued in its mappings), and
// whether documents carry fields outside the mapping.
package sample

import (
	"context"
	"encoding/json"
	"time"

	"github.com/roach88/estable/internal/decode"
	"github.com/roach88/estable/internal/elastic"
	"github.com/roach88/estable/internal/mapping"
)

// Scroller is the paginated document fetch collaborator.
type Scroller interface {
	ScrollSearch(ctx context.Context, index string, body []byte, keepAlive time.Duration) (*elastic.Page, error)
	ScrollNext(ctx context.Context, scrollID string, keepAlive time.Duration) (*elastic.Page, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// Result is what sampling learned. Consumed once to adjust the resolved
// schema.
type Result struct {
	// ArrayPaths holds the column paths observed holding JSON arrays.
	ArrayPaths map[string]struct{}

	// HasUnmapped reports whether any sampled document carried a field
	// outside the mapped-path set.
	HasUnmapped bool
}

const keepAlive = time.Minute

const maxPageSize = 1000

// Run samples up to budget documents matching baseQuery (match-all when
// empty) and classifies fields. A budget of zero disables sampling. Any
// fetch failure degrades conservatively to "no arrays, no unmapped" -
// planning never blocks on sampling.
func Run(ctx context.Context, sc Scroller, index string, baseQuery json.RawMessage, schema *mapping.Schema, budget int) Result {
	result := Result{ArrayPaths: make(map[string]struct{})}
	if budget <= 0 {
		return result
	}

	// Geo fields are excluded: their JSON array form encodes
	// coordinates, not multiplicity. A field stays pending until seen
	// holding an array - a scalar observation is not conclusive, the
	// store may emit a lone scalar for a multi-valued field.
	pending := make(map[string]struct{})
	for _, col := range schema.Columns {
		if mapping.IsGeo(col.ESType) {
			continue
		}
		pending[col.Path] = struct{}{}
	}

	body, err := searchBody(baseQuery, budget)
	if err != nil {
		return result
	}
	page, err := sc.ScrollSearch(ctx, index, body, keepAlive)
	if err != nil {
		return result
	}
	scrollID := page.ScrollID
	defer func() {
		if scrollID != "" {
			_ = sc.ClearScroll(ctx, scrollID)
		}
	}()

	seen := 0
	for {
		if len(page.Hits) == 0 {
			return result // exhausted
		}
		for _, hit := range page.Hits {
			if seen >= budget {
				return result
			}
			seen++
			doc, err := decode.ParseDocument(hit.Source)
			if err != nil {
				continue
			}
			classify(doc, pending, &result)
			if !result.HasUnmapped && decode.Unmapped(doc, schema.MappedPaths) != nil {
				result.HasUnmapped = true
			}
			// Early stop: every field already detected as array and an
			// unmapped field found - more documents cannot change the
			// result.
			if len(pending) == 0 && result.HasUnmapped {
				return result
			}
		}
		if seen >= budget {
			return result
		}
		page, err = sc.ScrollNext(ctx, scrollID, keepAlive)
		if err != nil {
			return result
		}
		if page.ScrollID != "" {
			scrollID = page.ScrollID
		}
	}
}

// classify records each still-pending field observed holding an array.
// Only an array observation settles a field; any later document may
// still reveal one.
func classify(doc map[string]any, pending map[string]struct{}, result *Result) {
	for path := range pending {
		if _, isArray := decode.ValueByPath(doc, path).([]any); !isArray {
			continue
		}
		result.ArrayPaths[path] = struct{}{}
		delete(pending, path)
	}
}

func searchBody(baseQuery json.RawMessage, budget int) ([]byte, error) {
	query := json.RawMessage(`{"match_all":{}}`)
	if len(baseQuery) > 0 {
		query = baseQuery
	}
	size := budget
	if size > maxPageSize {
		size = maxPageSize
	}
	return json.Marshal(map[string]any{
		"size":  size,
		"query": query,
	})
}
