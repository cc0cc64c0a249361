// Package scan ties the planning pieces together for the host engine:
// schema resolution behind the cache, the output schema contract, final
// search request assembly, and row iteration over scroll pages.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/estable/internal/elastic"
	"github.com/roach88/estable/internal/estype"
	"github.com/roach88/estable/internal/mapping"
	"github.com/roach88/estable/internal/sample"
	"github.com/roach88/estable/internal/schemacache"
)

// Output schema contract: every table is prefixed by the document
// identifier column and suffixed by the residual JSON column capturing
// unmapped fields.
const (
	IDColumn       = "_id"
	UnmappedColumn = "_unmapped_"
)

// Store is the transport collaborator the planner needs: mapping fetch
// plus paginated document fetch.
type Store interface {
	GetMapping(ctx context.Context, index string) (json.RawMessage, error)
	ScrollSearch(ctx context.Context, index string, body []byte, keepAlive time.Duration) (*elastic.Page, error)
	ScrollNext(ctx context.Context, scrollID string, keepAlive time.Duration) (*elastic.Page, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// Options selects what to resolve.
type Options struct {
	// Index is the index name or wildcard pattern.
	Index string

	// BaseQuery is an optional raw DSL query the caller wants merged
	// into every search ("" for none). Part of the cache key: it
	// filters the sampled documents.
	BaseQuery string

	// SampleSize bounds the completeness sample. Zero disables
	// sampling.
	SampleSize int
}

// OutputColumn is one column of the host-facing schema.
type OutputColumn struct {
	Name string
	Type estype.Type
}

// Table is a resolved, sample-adjusted table.
type Table struct {
	// Schema is the merged mapping schema, with detected array columns
	// already wrapped in lists.
	Schema *mapping.Schema

	// Columns is the host-facing column list per the output contract.
	Columns []OutputColumn
}

// Planner resolves tables and opens scans. One Planner per connection;
// the cache is shared across planners for the host session.
type Planner struct {
	store Store
	cache *schemacache.Cache
	host  string
	port  int
}

// NewPlanner creates a Planner. host and port identify the connection
// in cache keys.
func NewPlanner(store Store, cache *schemacache.Cache, host string, port int) *Planner {
	return &Planner{store: store, cache: cache, host: host, port: port}
}

// Resolve produces the table for an index pattern, fetching and sampling
// on a cache miss. Mapping fetch failures and schema conflicts are fatal
// planning errors; sampling failures degrade silently inside sample.Run.
func (p *Planner) Resolve(ctx context.Context, opts Options) (*Table, error) {
	key := schemacache.Key{
		Host:       p.host,
		Port:       p.port,
		Index:      opts.Index,
		BaseQuery:  opts.BaseQuery,
		SampleSize: opts.SampleSize,
	}
	if schema, ok := p.cache.Get(key); ok {
		return buildTable(schema), nil
	}

	raw, err := p.store.GetMapping(ctx, opts.Index)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", opts.Index, err)
	}
	schema, err := mapping.Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", opts.Index, err)
	}

	result := sample.Run(ctx, p.store, opts.Index, json.RawMessage(opts.BaseQuery), schema, opts.SampleSize)
	schema.ApplyArrayPaths(result.ArrayPaths)

	p.cache.Put(key, schema)
	return buildTable(schema), nil
}

func buildTable(schema *mapping.Schema) *Table {
	columns := make([]OutputColumn, 0, len(schema.Columns)+2)
	columns = append(columns, OutputColumn{Name: IDColumn, Type: estype.Scalar{Kind: estype.String}})
	for _, col := range schema.Columns {
		columns = append(columns, OutputColumn{Name: col.Name, Type: col.Type})
	}
	columns = append(columns, OutputColumn{Name: UnmappedColumn, Type: estype.Scalar{Kind: estype.String}})
	return &Table{Schema: schema, Columns: columns}
}
