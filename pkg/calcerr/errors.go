// Package calcerr defines the typed error taxonomy shared by the calculation
// packages. Validation errors reject malformed input before any computation;
// domain errors report economically impossible inputs with a human-readable
// reason so callers can render distinct guidance.
package calcerr

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed or out-of-range input rejected before
// computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// DomainError indicates inputs that are well-formed but economically
// unsolvable, e.g. a percentage stack at or above 100%.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return e.Reason
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Domain builds a DomainError.
func Domain(reason string) error {
	return &DomainError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDomain reports whether err is (or wraps) a DomainError.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
