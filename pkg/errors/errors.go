// Package errors provides structured error types for the catalogue tool.
//
// This package defines error codes and types that enable:
//   - Telling fatal failures apart from per-file skips
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a coarse category naming convention:
//   - MISSING_* / MALFORMED_*: Input that cannot be read or parsed (fatal)
//   - INVALID_VERSION_FILE: A version file that was skipped (recoverable)
//   - DIRECTORY_CREATION / WRITE_FAILED: Output failures during explode (fatal)
//   - INVALID_INPUT / INVALID_CONFIG: Bad flags or configuration
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "--file is required for explode")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle usage error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMissingFile, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors, fatal for implode and explode
	ErrCodeMissingFile    Code = "MISSING_FILE"
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"

	// Recoverable per-file error; the file is skipped
	ErrCodeInvalidVersionFile Code = "INVALID_VERSION_FILE"

	// Output errors during explode
	ErrCodeDirectoryCreation Code = "DIRECTORY_CREATION"
	ErrCodeWrite             Code = "WRITE_FAILED"

	// Usage errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

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
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WrapRead wraps a failed file read, choosing MISSING_FILE when the file
// does not exist and MALFORMED_INPUT otherwise.
func WrapRead(cause error, path string) *Error {
	if errors.Is(cause, fs.ErrNotExist) {
		return Wrap(ErrCodeMissingFile, cause, "missing %s", path)
	}
	return Wrap(ErrCodeMalformedInput, cause, "read %s", path)
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
