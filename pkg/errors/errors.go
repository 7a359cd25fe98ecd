// Package errors provides structured error types for nbenv.
//
// The notebook pipeline has a two-tier failure model:
//   - document-level failures (acquisition, structure) abort the pipeline
//     before anything is rendered or published
//   - cell-level failures are contained and degrade a single cell
//
// Codes let callers tell these apart without string matching. They are used
// inside the module only; users see [UserMessage].
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidStructure, "notebook has no cell list")
//	if errors.Is(err, errors.ErrCodeInvalidStructure) {
//	    // nothing was published
//	}
//
//	err := errors.Wrap(errors.ErrCodeAcquisition, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Acquisition errors: the document never reached the pipeline.
	ErrCodeAcquisition Code = "ACQUISITION_FAILED"

	// Document and cell shape errors
	ErrCodeInvalidStructure Code = "INVALID_STRUCTURE"
	ErrCodeInvalidCell      Code = "INVALID_CELL"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeSampleNotFound Code = "SAMPLE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Manifest publication errors
	ErrCodePublish Code = "PUBLISH_FAILED"

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
// The outermost *Error wins, so wrapping an INVALID_CELL inside a
// PUBLISH_FAILED reports PUBLISH_FAILED.
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

// IsDocumentLevel reports whether err aborts a whole pipeline run
// (acquisition or structure failures) as opposed to a contained cell failure.
func IsDocumentLevel(err error) bool {
	switch GetCode(err) {
	case ErrCodeAcquisition, ErrCodeInvalidStructure, ErrCodeFileNotFound,
		ErrCodeSampleNotFound, ErrCodeNetwork, ErrCodeTimeout:
		return true
	}
	return false
}
