package filter

import (
	"errors"
	"fmt"

	"ReqFilter/internal/store"
)

var (
	// ErrInvalidConstraint is returned for malformed rule arguments, e.g. an
	// alias without both an output key and a modifier.
	ErrInvalidConstraint = errors.New("invalid constraint")
	// ErrNotFound is returned when a singular typed reference has no record.
	ErrNotFound = store.ErrNotFound
)

// FieldError wraps the failure of a single field; resolution stops at the
// first one.
type FieldError struct {
	Field string
	Rule  string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("filter %q (%s): %v", e.Field, e.Rule, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
