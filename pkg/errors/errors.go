// Package errors provides structured error types for the seqgraph toolkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - UNSUPPORTED_*, EMPTY_*: Construction precondition failures
//   - NOT_FOUND_*: Resource not found
//   - CORRUPT_*, DIMENSION_*: Persisted index problems
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedK, "k=%d exceeds packed limit", k)
//	if errors.Is(err, errors.ErrCodeUnsupportedK) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCorruptIndex, origErr, "failed to load %s", path)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidSymbol    Code = "INVALID_SYMBOL"
	ErrCodeInvalidRecord    Code = "INVALID_RECORD"
	ErrCodeInvalidGraphType Code = "INVALID_GRAPH_TYPE"
	ErrCodeInvalidAnnoType  Code = "INVALID_ANNO_TYPE"
	ErrCodeInvalidLabel     Code = "INVALID_LABEL"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Construction precondition errors
	ErrCodeUnsupportedK Code = "UNSUPPORTED_K"
	ErrCodeEmptyCorpus  Code = "EMPTY_CORPUS"
	ErrCodeMissingLabel Code = "MISSING_LABEL"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Persisted index errors
	ErrCodeCorruptIndex      Code = "CORRUPT_INDEX"
	ErrCodeDimensionMismatch Code = "DIMENSION_MISMATCH"

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

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err carries the given error code anywhere in its
// chain.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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

// InvalidSymbolError reports a non-alphabet character in a sequence,
// with enough position information to point at the offending record.
type InvalidSymbolError struct {
	Symbol byte // Offending character
	Pos    int  // Zero-based offset within the sequence
}

// Error implements the error interface.
func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q at position %d", e.Symbol, e.Pos)
}

// Code returns the error code for this error type.
func (e *InvalidSymbolError) Code() Code {
	return ErrCodeInvalidSymbol
}
