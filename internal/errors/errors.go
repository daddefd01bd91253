package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// AppError is the application error type: a stable machine-readable code, a
// human message, and the wrapped cause.
type AppError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Cause     error  `json:"-"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Operation string `json:"operation,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError, recording the caller for diagnostics.
func New(code, message string, cause error) *AppError {
	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
		File:    file,
		Line:    line,
	}
}

// WithOperation tags the error with the operation that produced it.
func (e *AppError) WithOperation(operation string) *AppError {
	e.Operation = operation
	return e
}

// WithDetails attaches free-form detail text.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Error codes. ErrCodeConfiguration is fatal at startup: an invalid gate,
// dimension, or dedup configuration aborts the run before any listing is
// processed. ErrCodeValidation rejects a single listing from a batch while
// processing continues for the rest.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeDatabase      = "DATABASE_ERROR"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

func NotFound(message string, cause error) *AppError {
	return New(ErrCodeNotFound, message, cause)
}

func Validation(message string, cause error) *AppError {
	return New(ErrCodeValidation, message, cause)
}

func Configuration(message string, cause error) *AppError {
	return New(ErrCodeConfiguration, message, cause)
}

func Unauthorized(message string, cause error) *AppError {
	return New(ErrCodeUnauthorized, message, cause)
}

func Forbidden(message string, cause error) *AppError {
	return New(ErrCodeForbidden, message, cause)
}

func Conflict(message string, cause error) *AppError {
	return New(ErrCodeConflict, message, cause)
}

func Database(message string, cause error) *AppError {
	return New(ErrCodeDatabase, message, cause)
}

func Internal(message string, cause error) *AppError {
	return New(ErrCodeInternal, message, cause)
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
