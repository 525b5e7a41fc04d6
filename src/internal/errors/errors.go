// Package errors provides domain-specific error types for zyro.
//
// This package defines structured errors with error codes, making it easier to handle
// and test different error conditions consistently across the application.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfigLoad indicates the configuration file is missing, unreadable,
	// not a YAML file or does not parse into a mapping.
	ErrCodeConfigLoad ErrorCode = "CONFIG_LOAD_ERROR"

	// ErrCodeSchema indicates malformed, missing or out-of-range configuration fields.
	ErrCodeSchema ErrorCode = "SCHEMA_VALIDATION_ERROR"

	// ErrCodeDuplicateRoute indicates repeated (method, path) declarations under strict mode.
	ErrCodeDuplicateRoute ErrorCode = "DUPLICATE_ROUTE_ERROR"

	// ErrCodeStatePersistence indicates the state file could not be written.
	ErrCodeStatePersistence ErrorCode = "STATE_PERSISTENCE_ERROR"

	// ErrCodeServer indicates the HTTP server could not be started or stopped.
	ErrCodeServer ErrorCode = "SERVER_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
//
// Details carries one independently renderable line per offending field or
// duplicate route, in the order they were found.
type Error struct {
	Code    ErrorCode
	Message string
	Details []string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigLoadError creates a new configuration loading error.
func NewConfigLoadError(message string, cause error) *Error {
	return Wrap(ErrCodeConfigLoad, message, cause)
}

// NewSchemaError creates a schema validation failure carrying per-field details.
func NewSchemaError(details []string, cause error) *Error {
	return &Error{
		Code:    ErrCodeSchema,
		Message: "Schema Validation Failed",
		Details: details,
		Cause:   cause,
	}
}

// NewDuplicateRouteError creates a strict-mode duplicate route failure.
func NewDuplicateRouteError(details []string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateRoute,
		Message: "Duplicate route detected",
		Details: details,
	}
}

// NewStatePersistenceError creates a new state write error.
func NewStatePersistenceError(message string, cause error) *Error {
	return Wrap(ErrCodeStatePersistence, message, cause)
}

// NewServerError creates a new server error.
func NewServerError(message string, cause error) *Error {
	return Wrap(ErrCodeServer, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}

// AsValidationError returns the schema or duplicate-route failure in err's chain.
func AsValidationError(err error) (*Error, bool) {
	var e *Error
	if !stderrors.As(err, &e) {
		return nil, false
	}
	if e.Code != ErrCodeSchema && e.Code != ErrCodeDuplicateRoute {
		return nil, false
	}
	return e, true
}

// HasCode reports whether err's chain contains a domain error with code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &Error{Code: code})
}
