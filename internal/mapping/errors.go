package mapping

import (
	"errors"
	"fmt"
)

// ConflictError reports a type conflict for one field path between two
// merged indices. Schema conflicts are always fatal and never resolved
// silently: the caller must reconcile the mappings or narrow the index
// pattern.
type ConflictError struct {
	// Path is the dotted field path where the conflict was detected.
	Path string

	// IndexA is the index that first defined the path.
	IndexA string

	// TypeA describes the first definition's type.
	TypeA string

	// IndexB is the index whose definition conflicts.
	IndexB string

	// TypeB describes the conflicting type.
	TypeB string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("incompatible types for field '%s': index '%s' has %s, index '%s' has %s",
		e.Path, e.IndexA, e.TypeA, e.IndexB, e.TypeB)
}

// IsConflict returns true if the error is a schema conflict.
// Uses errors.As to handle wrapped errors.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
