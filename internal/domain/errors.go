package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks request-level validation failures. Everything past
// validation degrades instead of failing.
var ErrInvalidInput = errors.New("invalid input")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
