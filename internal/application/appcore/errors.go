package appcore

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// ErrValidationFailed is wrapped by every ValidationError
	ErrValidationFailed = errors.New("validation failed")

	// ErrConcurrentUpdate is returned when the write retries are exhausted
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation error with errors.Is(err, ErrValidationFailed)
func (e ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
