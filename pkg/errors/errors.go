// Package errors provides structured error types for erchart.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP host
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Non-fatal warnings that are collected instead of returned
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - SCHEMA_*, MALFORMED_*, UNRESOLVED_*: Schema loading and graph construction
//   - LAYOUT_*: Layout engine defects
//   - NETWORK_*, NOT_FOUND: Provider transport failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRankDir, "unknown rank direction %q", dir)
//	if errors.Is(err, errors.ErrCodeInvalidRankDir) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSchemaFetch, origErr, "fetch %s", url)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidRankDir Code = "INVALID_RANKDIR"
	ErrCodeInvalidFilter  Code = "INVALID_FILTER"
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Schema loading and graph construction
	ErrCodeSchemaFetch        Code = "SCHEMA_FETCH_ERROR"
	ErrCodeMalformedAttribute Code = "MALFORMED_ATTRIBUTE"
	ErrCodeUnresolvedRelation Code = "UNRESOLVED_RELATION"

	// Layout defects
	ErrCodeLayoutInvariant Code = "LAYOUT_INVARIANT_VIOLATION"

	// Transport errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeTimeout  Code = "TIMEOUT"

	// Load coordination
	ErrCodeStaleLoad Code = "STALE_LOAD"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Chain returns the messages of err and every error it wraps, outermost first.
// Hosts print it where a stack trace would otherwise go.
func Chain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range multi.Unwrap() {
				out = append(out, Chain(inner)...)
			}
			return out
		}
		err = errors.Unwrap(err)
	}
	return out
}
