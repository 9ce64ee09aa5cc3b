package costing

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a record does not exist or belongs to another
// tenant. The two cases are deliberately indistinguishable so a caller can
// never probe for data it does not own.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects malformed input. It is always raised before any
// mutation happens, so a rejected operation leaves the store untouched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation, such as reusing a name
// within a tenant or deleting a raw material that products still reference.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func conflictf(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
