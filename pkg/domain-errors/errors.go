// Package domainerrors provides coded errors for domain logic.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate those into coded errors so transports can map them to
// status codes without string matching. Every failure surfaced to a caller
// carries a specific code, never a generic one.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks input that fails a structural rule (name length,
	// price bounds). Rejected before any mutation.
	CodeValidation Code = "validation"
	// CodeUnauthorized marks callers that lack the required identity
	// (not the authority, not the owner).
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks lookups of absent records.
	CodeNotFound Code = "not_found"
	// CodeConflict marks creations against an occupied key.
	CodeConflict Code = "conflict"
	// CodeInvalidState marks operations against records in the wrong state
	// (inactive namespace, inactive domain).
	CodeInvalidState Code = "invalid_state"
	// CodeInsufficientFunds marks fee or settlement attempts the payer
	// cannot cover. Rejected before any transfer is attempted.
	CodeInsufficientFunds Code = "insufficient_funds"
	// CodeTimeout marks operations aborted by context expiry.
	CodeTimeout Code = "timeout"
	// CodeInternal marks unexpected infrastructure failures. Details are
	// never surfaced to callers.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It optionally wraps an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two coded errors by code and message, so errors.Is works
// against freshly constructed comparison values.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	return ok && e.Code == te.Code && e.Message == te.Message
}

// New constructs a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
