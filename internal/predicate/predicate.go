// Package predicate defines the relational predicate tree the host
// planner pushes down for translation.
package predicate

// Predicate represents one filter condition over resolved columns.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the translator.
//
// Predicate types:
//   - Comparison: column <op> constant
//   - In: column ∈ constants
//   - IsNull / IsNotNull: null checks
//   - Like: SQL LIKE pattern match
//   - And / Or: boolean combinators
//   - Nested: struct member access (rewrites the field path)
//   - GeoRelate: binary spatial relation against a constant geometry
//   - GeoDistance: distance comparison against a constant point
//
// Trees are owned by the host for the duration of one translation call
// and are never mutated by the translator.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// CompareOp enumerates the comparison operators.
type CompareOp int

const (
	Eq CompareOp = iota
	NotEq
	Lt
	LtEq
	Gt
	GtEq
)

// Comparison is column <op> constant. Constants are Go natives: string,
// bool, int64, float64, or time.Time for date columns.
type Comparison struct {
	Column string
	Op     CompareOp
	Value  any
}

func (Comparison) predicateNode() {}

// In is set membership: column IN (constants).
type In struct {
	Column string
	Values []any
}

func (In) predicateNode() {}

// IsNull matches rows where the column is null or absent.
type IsNull struct {
	Column string
}

func (IsNull) predicateNode() {}

// IsNotNull matches rows where the column is present and non-null.
type IsNotNull struct {
	Column string
}

func (IsNotNull) predicateNode() {}

// Like is a SQL LIKE pattern match: % matches any run, _ matches one
// character, backslash escapes either.
type Like struct {
	Column          string
	Pattern         string
	CaseInsensitive bool
}

func (Like) predicateNode() {}

// And requires every child to match.
type And struct {
	Children []Predicate
}

func (And) predicateNode() {}

// Or requires at least one child to match.
type Or struct {
	Children []Predicate
}

func (Or) predicateNode() {}

// Nested applies an inner predicate to a struct member. The member name
// is prepended to the field path and translation recurses; leaves inside
// Inner leave their Column empty.
type Nested struct {
	Column string // parent struct column (empty when itself nested)
	Field  string // member name
	Inner  Predicate
}

func (Nested) predicateNode() {}

// GeoKind enumerates the binary spatial relations.
type GeoKind int

const (
	Within GeoKind = iota
	Contains
	Intersects
	Disjoint
)

// GeoRelate relates a geo column to a constant geometry. Within and
// Contains are asymmetric: ColumnIsSubject records which side of the
// original predicate the column appeared on, which determines the DSL
// relation. Geometry is constant text - GeoJSON or WKT.
type GeoRelate struct {
	Kind            GeoKind
	Column          string
	ColumnIsSubject bool
	Geometry        string
}

func (GeoRelate) predicateNode() {}

// GeoDistance compares the distance between a geo column and a constant
// point against a radius in meters. Op Lt/LtEq means "within radius";
// Gt/GtEq means "farther than" and is lowered as a negation.
type GeoDistance struct {
	Column   string
	Geometry string // constant point, GeoJSON or WKT
	Op       CompareOp
	Meters   float64
}

func (GeoDistance) predicateNode() {}
