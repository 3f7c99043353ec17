package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeValidation indicates a malformed or incomplete valuation request
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeRetrieval indicates the comparable-sales search failed or
	// produced no parsable records even after window expansion
	ErrorTypeRetrieval ErrorType = "RETRIEVAL"

	// ErrorTypeInsufficientData indicates the cleaned comparable set had no
	// usable records left to value from
	ErrorTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"

	// ErrorTypeExternal indicates an error from an external service
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewRetrievalError creates a new retrieval error. err may be nil when the
// search succeeded but yielded nothing parsable.
func NewRetrievalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeRetrieval,
		Message: message,
		Err:     err,
	}
}

// NewInsufficientDataError creates a new insufficient data error
func NewInsufficientDataError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientData,
		Message: message,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err if it is (or wraps) an AppError,
// and ErrorTypeInternal otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
