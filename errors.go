package triage

import "fmt"

// ReferenceError reports an invalid field of an issue or reference.
type ReferenceError struct {
	Field  string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("triage: invalid %s: %s", e.Field, e.Reason)
}
