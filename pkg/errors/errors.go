// Package errors provides structured error types for pkgpulse.
//
// Error codes enable consistent handling across the CLI: per-source fetch
// failures are non-fatal to a run, while store and render failures abort it.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - FETCH_*: Per-source fetch failures (non-fatal)
//   - STORE_*: Time-series store failures (fatal)
//   - RENDER_*: Report rendering failures (fatal)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFetchFailed, "pypistats: %s", pkg)
//	if errors.HasCode(err, errors.ErrCodeFetchFailed) {
//	    // log and continue with remaining sources
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStoreFailed, origErr, "append %d readings", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"
	ErrCodeInvalidWindow  Code = "INVALID_WINDOW"
	ErrCodeInvalidReading Code = "INVALID_READING"

	// Fetch errors (non-fatal, per source)
	ErrCodeFetchFailed   Code = "FETCH_FAILED"
	ErrCodeFetchNotFound Code = "FETCH_NOT_FOUND"
	ErrCodeFetchTimeout  Code = "FETCH_TIMEOUT"
	ErrCodeRateLimited   Code = "RATE_LIMITED"

	// Store errors (fatal to the run)
	ErrCodeStoreFailed Code = "STORE_FAILED"

	// Render errors (fatal to the run)
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
// If cause is already an *Error, its code is preserved unless code is non-empty.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// GetCode extracts the error code from err.
// Returns ErrCodeInternal if err is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err (or any error in its chain) carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsFetchError reports whether err is a per-source fetch failure that
// should not abort the run.
func IsFetchError(err error) bool {
	switch GetCode(err) {
	case ErrCodeFetchFailed, ErrCodeFetchNotFound, ErrCodeFetchTimeout, ErrCodeRateLimited:
		return true
	}
	return false
}
