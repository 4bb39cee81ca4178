// Package apperrors defines the error taxonomy shared by services and
// handlers. Services wrap these sentinels with context; handlers map them
// onto HTTP status codes with errors.Is / errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing event, site or post-mortem id.
	ErrNotFound = errors.New("not found")

	// ErrSourceUnavailable marks a failed fleet-status fetch. A scan cycle
	// that hits it aborts with no state mutated, so a down monitoring
	// backend never produces false alerts.
	ErrSourceUnavailable = errors.New("site source unavailable")
)

// ValidationError rejects malformed or conflicting input, such as a second
// post-mortem for an event that already has one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
