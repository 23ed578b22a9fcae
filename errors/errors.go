// Package errors provides error handling for foreman.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints (usage lines, accepted tokens)
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := store.Save(ctx, rec); err != nil {
//	    return errors.Wrap(err, "failed to save constraint")
//	}
//
//	// Classify against the workflow taxonomy
//	if errors.Is(err, errors.ErrLookup) {
//	    // unknown item type or material token
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors for the workflow failure taxonomy.
// Wrap these with the New*Error helpers to add context while preserving the type.
var (
	// ErrUsage indicates a malformed command or selector. No state is changed.
	ErrUsage = New("usage error")

	// ErrLookup indicates an unknown item-type/material token or an ambiguous
	// category/material combination. The constraint is not created or updated.
	ErrLookup = New("lookup failure")

	// ErrValidation indicates an argument that parsed but is out of range
	ErrValidation = New("validation error")

	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrRecovery indicates a tracked job could not be recovered and was forgotten
	ErrRecovery = New("recovery failure")

	// ErrReconstructionConflict indicates a reconstructed job collided with a live id
	ErrReconstructionConflict = New("reconstruction conflict")

	// ErrCorruptState indicates persisted state that cannot be interpreted
	ErrCorruptState = New("corrupt persisted state")

	// ErrNoWorld indicates an entry point was invoked without a loaded world
	ErrNoWorld = New("world is not loaded")
)

// IsUsageError checks if an error is or wraps ErrUsage
func IsUsageError(err error) bool {
	return err != nil && Is(err, ErrUsage)
}

// IsLookupError checks if an error is or wraps ErrLookup
func IsLookupError(err error) bool {
	return err != nil && Is(err, ErrLookup)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewUsageError creates a usage error with a formatted message
func NewUsageError(format string, args ...interface{}) error {
	return Wrap(ErrUsage, Newf(format, args...).Error())
}

// NewLookupError creates a lookup failure with a formatted message
func NewLookupError(format string, args ...interface{}) error {
	return Wrap(ErrLookup, Newf(format, args...).Error())
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(format string, args ...interface{}) error {
	return Wrap(ErrValidation, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewRecoveryError creates a recovery failure with a formatted message
func NewRecoveryError(format string, args ...interface{}) error {
	return Wrap(ErrRecovery, Newf(format, args...).Error())
}

// NewConflictError creates a reconstruction conflict with a formatted message
func NewConflictError(format string, args ...interface{}) error {
	return Wrap(ErrReconstructionConflict, Newf(format, args...).Error())
}

// WrapCorrupt marks err as a corrupt-state failure, keeping its message
func WrapCorrupt(err error, context string) error {
	return Wrap(Wrap(ErrCorruptState, err.Error()), context)
}
