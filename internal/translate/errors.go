package translate

import (
	"errors"
	"fmt"
)

// TextFieldError reports an exact-match, range, or pattern predicate
// against an analyzed text field that has no keyword sibling. This is
// the one hard translation failure: leaving such a predicate untranslated
// under a plan that assumes pushdown would silently return wrong rows.
type TextFieldError struct {
	// Field is the analyzed text field path.
	Field string
}

// Error implements the error interface.
func (e *TextFieldError) Error() string {
	return fmt.Sprintf("cannot filter on text field '%s' because it lacks a keyword subfield; "+
		"add a keyword subfield to the mapping, or supply the filter through the native query parameter",
		e.Field)
}

// IsTextFieldError returns true if the error is a text-field pushdown
// violation. Uses errors.As to handle wrapped errors.
func IsTextFieldError(err error) bool {
	var te *TextFieldError
	return errors.As(err, &te)
}
