// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and resolved into terminal job dispositions by the worker.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermanentPayload indicates a payload defect (bad compression, size
	// limit exceeded) that reproduces on every delivery and must never be retried.
	ErrPermanentPayload = errors.New("permanent payload defect")
)

// Classification is the explicit retry classification for a failure.
// Every component that can fail resolves its error into one of these
// instead of relying on error type inspection at call sites.
type Classification int

const (
	// Transient marks an unknown or infrastructure failure that may succeed
	// on a future attempt. This is the only retryable class.
	Transient Classification = iota

	// PermanentPayload marks a payload defect that reproduces on every delivery.
	PermanentPayload

	// Validation marks semantically invalid input; never retried.
	Validation

	// NotFound marks a missing resource (blob, project, document).
	NotFound

	// Cancelled marks a cancellation signal; no retry bookkeeping applies.
	Cancelled
)

// String returns the classification name for logging.
func (c Classification) String() string {
	switch c {
	case PermanentPayload:
		return "permanent_payload"
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Cancelled:
		return "cancelled"
	default:
		return "transient"
	}
}

// Classify resolves an error chain into a Classification.
// Unknown errors classify as Transient.
func Classify(err error) Classification {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, ErrPermanentPayload):
		return PermanentPayload
	case errors.Is(err, ErrInvalidInput):
		return Validation
	case errors.Is(err, ErrNotFound):
		return NotFound
	default:
		return Transient
	}
}

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
