// Package errors carries the coded errors that vlanimate reports to callers.
//
// Every stage of the compiler fails with an [*Error] whose [Code] says which
// kind of input was at fault, so that the CLI can pick an exit status and the
// HTTP API a response status without parsing messages. Stages further up
// wrap these with fmt.Errorf and %w; [Is] and [GetCode] see through that.
//
// # Codes
//
//   - INVALID_SPEC, INVALID_INPUT, INVALID_FORMAT, INVALID_CONFIG: the chart,
//     a request, a compiled graph or the config file could not be used
//   - MISSING_FIELD: the chart lacks a field at the point it was first needed,
//     such as a time encoding without "field"
//   - NOT_FOUND, FILE_NOT_FOUND: a stored graph, data URL or local file
//   - BASE_COMPILER: lowering the static chart failed
//   - NETWORK_ERROR, TIMEOUT: fetching data or waiting on the base compiler
//   - UNSUPPORTED: the chart uses something the chosen base compiler cannot lower
//
// A typical failure and how it is recognised after the pipeline wrapped it:
//
//	var err error = errors.MissingField("time encoding", "field")
//	err = fmt.Errorf("compile: %w", err)
//	if errors.Is(err, errors.ErrCodeMissingField) {
//	    // exit status 2
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// Input
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSpec   Code = "INVALID_SPEC"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeMissingField  Code = "MISSING_FIELD"

	// Lookups
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Collaborators
	ErrCodeBaseCompiler Code = "BASE_COMPILER"
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeTimeout      Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error recording cause, typically the stderr-bearing
// failure of a collaborator.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// MissingField reports a required spec field that was absent at its first
// point of use. where names the construct that needed it (e.g. "time encoding").
func MissingField(where, field string) *Error {
	return New(ErrCodeMissingField, "%s requires %q", where, field)
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// and cause, or err's text for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
