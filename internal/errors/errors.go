// LOCATION: internal/errors/errors.go
//
// This file provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreClosed      = errors.New("store is closed")
	ErrStoreMalformed   = errors.New("store container is malformed")

	// Lookup errors
	ErrUnknownMeter = errors.New("unknown meter ID")

	// Aggregation errors
	ErrEmptyMeterSet     = errors.New("empty meter set")
	ErrMisalignedSeries  = errors.New("series timestamps are misaligned")
	ErrEmptySeries       = errors.New("empty series")
	ErrInvalidSubsetSize = errors.New("invalid subset size")

	// Validation errors
	ErrInvalidSelector = errors.New("invalid selector")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingField    = errors.New("missing required field")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// IsStoreError returns true if err means the backing store is unusable,
// as opposed to a bad key or bad arguments from the caller.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrStoreClosed) ||
		errors.Is(err, ErrStoreMalformed)
}

// IsBadInput returns true if err is caused by the caller's arguments and the
// store itself is still usable.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrUnknownMeter) ||
		errors.Is(err, ErrEmptyMeterSet) ||
		errors.Is(err, ErrMisalignedSeries) ||
		errors.Is(err, ErrInvalidSubsetSize) ||
		errors.Is(err, ErrInvalidSelector)
}

// IsValidation returns true if err is a configuration validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingField)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewUnknownMeter creates an unknown-meter error naming the offending ID.
func NewUnknownMeter(id int64) error {
	return fmt.Errorf("meter %d: %w", id, ErrUnknownMeter)
}

// NewStoreUnavailable creates a store-unavailable error with the path and cause.
func NewStoreUnavailable(path string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", path, ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %v: %w", path, cause, ErrStoreUnavailable)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}
