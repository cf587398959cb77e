// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a missing master or variance record. Callers treat it as
// a renderable empty state, not a failure.
var ErrNotFound = errors.New("not found")

// ValidationError carries a human-readable message for caller input that
// cannot be accepted. It is never silently defaulted away.
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

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
