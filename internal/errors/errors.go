// Package errors defines the application error taxonomy shared by every
// pipeline stage. Errors carry a machine-readable type so callers and tests
// can branch on the failure class without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	// ErrTypeFormat marks a malformed date string.
	ErrTypeFormat ErrorType = "FORMAT"
	// ErrTypeRange marks a date range whose start is after its end.
	ErrTypeRange ErrorType = "RANGE"
	// ErrTypeFutureDate marks a requested start date that has not been reached yet.
	ErrTypeFutureDate ErrorType = "FUTURE_DATE"
	// ErrTypeFetch marks a per-date transport or HTTP failure. Never fatal to
	// a fetch run; the date is left unfetched for a resumed run.
	ErrTypeFetch ErrorType = "FETCH"
	// ErrTypeNoInput marks a stage that found nothing to process.
	ErrTypeNoInput ErrorType = "NO_INPUT"
	// ErrTypeParameter marks a bad parameter such as a non-positive top-N.
	ErrTypeParameter ErrorType = "PARAMETER"
	// ErrTypeSchema marks a lake table missing a column the aggregation needs.
	ErrTypeSchema ErrorType = "SCHEMA"
	// ErrTypeParsing marks a staged or lake file that could not be decoded.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeStorage marks a filesystem failure.
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeConfig marks invalid configuration.
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError is an application-specific error with a type and optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new application error.
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// NewFormatError creates a malformed-date error.
func NewFormatError(message string, cause error) *AppError {
	return New(ErrTypeFormat, message, cause)
}

// NewRangeError creates a start-after-end error.
func NewRangeError(message string) *AppError {
	return New(ErrTypeRange, message, nil)
}

// NewFutureDateError creates a future-start-date error.
func NewFutureDateError(message string) *AppError {
	return New(ErrTypeFutureDate, message, nil)
}

// NewFetchError creates a per-date download error.
func NewFetchError(message string, cause error) *AppError {
	return New(ErrTypeFetch, message, cause)
}

// NewNoInputError creates a nothing-to-process error.
func NewNoInputError(message string) *AppError {
	return New(ErrTypeNoInput, message, nil)
}

// NewParameterError creates a bad-parameter error.
func NewParameterError(message string) *AppError {
	return New(ErrTypeParameter, message, nil)
}

// NewSchemaError creates a missing-column error.
func NewSchemaError(message string) *AppError {
	return New(ErrTypeSchema, message, nil)
}

// NewParsingError creates a file-decoding error.
func NewParsingError(message string, cause error) *AppError {
	return New(ErrTypeParsing, message, cause)
}

// NewStorageError creates a filesystem error.
func NewStorageError(message string, cause error) *AppError {
	return New(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return New(ErrTypeConfig, message, cause)
}
