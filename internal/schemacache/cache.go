// Package schemacache memoizes resolved schemas so repeated planning
// calls for the same table skip the mapping fetch and sampling round
// trips.
//
// The cache is an explicitly constructed service owned by whoever issues
// planning calls; its lifetime is the host session's, not the process's.
// Entries are immutable once inserted and copied out on Get. The cache
// is unbounded with no eviction and no stampede protection on concurrent
// misses (last writer wins) - known limitations.
package schemacache

import (
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/estable/internal/mapping"
)

// Key identifies one resolved schema. Credentials, SSL flags, and
// transport timeouts are deliberately excluded: they do not affect the
// resolved schema.
type Key struct {
	Host       string
	Port       int
	Index      string
	BaseQuery  string
	SampleSize int
}

// String renders the delimiter-joined cache key.
func (k Key) String() string {
	return strings.Join([]string{
		k.Host,
		strconv.Itoa(k.Port),
		k.Index,
		k.BaseQuery,
		strconv.Itoa(k.SampleSize),
	}, "\x00")
}

// Cache is a mutex-serialized schema cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*mapping.Schema
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*mapping.Schema)}
}

// Get returns a copy of the cached schema for key, if present. The copy
// keeps callers from mutating cached state.
func (c *Cache) Get(key Key) (*mapping.Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	schema, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return schema.Clone(), true
}

// Put stores a schema under key. The cache takes its own copy.
func (c *Cache) Put(key Key, schema *mapping.Schema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = schema.Clone()
}

// Clear drops every entry and returns how many were evicted.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*mapping.Schema)
	return n
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
