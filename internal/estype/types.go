package estype

import (
	"fmt"
	"strings"
)

// Type is the semantic type of a resolved column.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the decoder and the query translator.
//
// Type shapes:
//   - Scalar: a leaf value (string, integer widths, floats, bool, timestamp)
//   - Struct: an object with named, typed children
//   - List: a repeated element type
type Type interface {
	typeNode() // Marker method - seals interface to this package
	String() string
}

// ScalarKind enumerates the leaf value kinds.
type ScalarKind int

const (
	String ScalarKind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Timestamp
)

var scalarNames = map[ScalarKind]string{
	String:    "string",
	Bool:      "bool",
	Int8:      "int8",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	Float32:   "float32",
	Float64:   "float64",
	Timestamp: "timestamp",
}

// Scalar is a leaf type.
type Scalar struct {
	Kind ScalarKind
}

func (Scalar) typeNode() {}

func (s Scalar) String() string {
	if name, ok := scalarNames[s.Kind]; ok {
		return name
	}
	return fmt.Sprintf("scalar(%d)", s.Kind)
}

// Field is one named member of a Struct. Order is significant: it follows
// the declared order in the source mapping.
type Field struct {
	Name string
	Type Type
}

// Struct is an object type with ordered, named children.
type Struct struct {
	Fields []Field
}

func (Struct) typeNode() {}

func (s Struct) String() string {
	var b strings.Builder
	b.WriteString("struct(")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(" ")
		b.WriteString(f.Type.String())
	}
	b.WriteString(")")
	return b.String()
}

// Find returns the child field with the given name.
func (s Struct) Find(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// List is a repeated element type.
type List struct {
	Elem Type
}

func (List) typeNode() {}

func (l List) String() string {
	return "list(" + l.Elem.String() + ")"
}
