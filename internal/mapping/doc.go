// Package mapping resolves Elasticsearch index mappings into a relational
// schema.
//
// The entry point is Resolve, which takes the raw JSON body of a
// GET /<pattern>/_mapping response covering one or more concrete indices,
// converts every field definition into a semantic column type, and merges
// the per-index field lists into one Schema. Field order follows the
// mapping's declared order, and first-seen order across indices, because
// column order is part of the schema contract.
//
// Overlapping struct fields are unioned recursively; any other type
// disagreement between two indices is a hard ConflictError naming the
// offending path and both indices.
package mapping
