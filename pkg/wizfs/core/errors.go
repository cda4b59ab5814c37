package core

import (
	"fmt"
)

// ValidationError rejects user-supplied input before any mutation happens:
// empty names, path separators in names, duplicate targets.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s %q: %s: %v", e.Field, e.Value, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// LegalityError rejects a gesture that would break document integrity,
// such as moving items into a document folder or renaming across one.
type LegalityError struct {
	Path   string
	Reason string
}

func (e *LegalityError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("illegal operation on %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("illegal operation: %s", e.Reason)
}
