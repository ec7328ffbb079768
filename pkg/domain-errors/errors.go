// Package domainerrors defines the typed error taxonomy surfaced to callers.
//
// Services construct these directly or translate sentinel errors from stores.
// Each error carries a Code used for transport mapping and a human-readable
// message safe to return to the caller (CodeInternal messages are withheld at
// the HTTP boundary).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed or empty input, including non-positive
	// numeric parameters.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks a value object that failed construction at a
	// trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthorized marks a caller lacking the required role or
	// registration for an operation.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks a referenced DID, credential, player, or treasure
	// that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks duplicate creation and wrong-state transitions such
	// as claiming an already-claimed treasure.
	CodeConflict Code = "conflict"
	// CodeResourceExhausted marks a depleted move budget.
	CodeResourceExhausted Code = "resource_exhausted"
	// CodeInvariantViolation marks a model invariant breach detected during
	// construction or a state transition check.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks infrastructure faults wrapped on the way out.
	CodeInternal Code = "internal"
)

// Error is a typed domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable via errors.Is / errors.Unwrap.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on code so errors.Is(err, dErrors.New(code, "")) works for
// sentinel-style comparisons between domain errors.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HasCode reports whether err is (or wraps) a domain error with the code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors so faults never leak as caller mistakes.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
