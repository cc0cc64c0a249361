package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/estable/internal/decode"
	"github.com/roach88/estable/internal/elastic"
	"github.com/roach88/estable/internal/esdsl"
)

const (
	scrollKeepAlive = time.Minute
	defaultPageSize = 1000
)

// Query describes one scan execution.
type Query struct {
	// Index is the index name or pattern.
	Index string

	// Pushed is the translated predicate, nil when nothing pushed down.
	Pushed esdsl.Query

	// Base is the caller's raw base query, empty for none.
	Base json.RawMessage

	// Columns names the output columns to produce, in order. Must be
	// drawn from the table's column list.
	Columns []string

	// Limit caps returned rows; negative means no limit. Offset rows
	// are fetched and skipped first.
	Limit  int64
	Offset int64

	// PageSize overrides the scroll page size when positive.
	PageSize int
}

// Rows iterates decoded rows over scroll pages. Not safe for concurrent
// use.
type Rows struct {
	store   Store
	table   *Table
	query   Query
	decoder *decode.Decoder

	page     *elastic.Page
	pos      int
	scrollID string
	skipped  int64
	returned int64
	done     bool
}

// Open starts a scan. The scroll page size is clamped to limit+offset
// for small limits so a LIMIT 5 query does not fetch a thousand hits.
func (p *Planner) Open(ctx context.Context, table *Table, q Query) (*Rows, error) {
	size := q.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if q.Limit >= 0 && q.Limit+q.Offset < int64(size) {
		size = int(q.Limit + q.Offset)
		if size == 0 {
			size = 1
		}
	}

	body, err := BuildSearchBody(q.Pushed, q.Base, Projection(table, q.Columns), size)
	if err != nil {
		return nil, err
	}
	page, err := p.store.ScrollSearch(ctx, q.Index, body, scrollKeepAlive)
	if err != nil {
		return nil, fmt.Errorf("open scan on %q: %w", q.Index, err)
	}
	return &Rows{
		store:    p.store,
		table:    table,
		query:    q,
		decoder:  decode.New(table.Schema),
		page:     page,
		scrollID: page.ScrollID,
	}, nil
}

// Next returns the next row, aligned with the query's column list.
// ok is false when the scan is exhausted.
func (r *Rows) Next(ctx context.Context) (row []any, ok bool, err error) {
	for {
		if r.done {
			return nil, false, nil
		}
		if r.query.Limit >= 0 && r.returned >= r.query.Limit {
			r.done = true
			return nil, false, nil
		}
		if r.pos >= len(r.page.Hits) {
			if len(r.page.Hits) == 0 {
				r.done = true
				return nil, false, nil
			}
			page, err := r.store.ScrollNext(ctx, r.scrollID, scrollKeepAlive)
			if err != nil {
				return nil, false, fmt.Errorf("scan %q: %w", r.query.Index, err)
			}
			if page.ScrollID != "" {
				r.scrollID = page.ScrollID
			}
			r.page = page
			r.pos = 0
			continue
		}

		hit := r.page.Hits[r.pos]
		r.pos++
		if r.skipped < r.query.Offset {
			r.skipped++
			continue
		}
		row, err := r.decodeHit(hit)
		if err != nil {
			return nil, false, err
		}
		r.returned++
		return row, true, nil
	}
}

// Close releases the server-side scroll.
func (r *Rows) Close(ctx context.Context) error {
	if r.scrollID == "" {
		return nil
	}
	id := r.scrollID
	r.scrollID = ""
	return r.store.ClearScroll(ctx, id)
}

func (r *Rows) decodeHit(hit elastic.Hit) ([]any, error) {
	doc, err := decode.ParseDocument(hit.Source)
	if err != nil {
		// A hit with an unreadable source still yields a row; every
		// source-derived column is null.
		doc = nil
	}
	row := make([]any, len(r.query.Columns))
	for i, name := range r.query.Columns {
		switch name {
		case IDColumn:
			row[i] = hit.ID
		case UnmappedColumn:
			residual := decode.Unmapped(doc, r.table.Schema.MappedPaths)
			if residual == nil {
				row[i] = nil
				continue
			}
			text, err := json.Marshal(residual)
			if err != nil {
				row[i] = nil
				continue
			}
			row[i] = string(text)
		default:
			col := r.table.Schema.Column(name)
			if col == nil || doc == nil {
				row[i] = nil
				continue
			}
			row[i] = r.decoder.Column(doc, *col)
		}
	}
	return row, nil
}
