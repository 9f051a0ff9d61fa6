// Package domainerrors provides coded errors for the caller-facing boundary.
//
// Stores return sentinel errors (pkg/platform/sentinel); the gateway and
// services translate them into coded errors here so callers can branch on a
// stable taxonomy without string matching. Policy denial is NOT an error at
// the policy layer (it is a first-class Decision value); the gateway converts
// a denial into a CodeForbidden error only at its outer boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers.
type Code string

const (
	CodeBadRequest        Code = "bad_request"
	CodeNotFound          Code = "not_found"
	CodeForbidden         Code = "forbidden"
	CodeIllegalTransition Code = "illegal_transition"
	CodeConflict          Code = "conflict"
	CodeUnavailable       Code = "unavailable"
	CodeInternal          Code = "internal"
)

// Retryable reports whether the code represents a transient condition.
// Authorization and lifecycle failures are never transient.
func (c Code) Retryable() bool {
	return c == CodeUnavailable
}

// Error is a coded error. Message is safe to surface to callers; it carries a
// coarse reason only and never identifies which policy rule matched.
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

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message, preserving the chain.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain. Uncoded errors map to
// CodeInternal.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
