package models

import "fmt"

// ValidationError points at the offending field so clients get field-level
// detail instead of an opaque 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
