package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeUnknownField   ErrorType = "UNKNOWN_FIELD"
	ErrTypeDuplicateField ErrorType = "DUPLICATE_FIELD"
	ErrTypeMissingValue   ErrorType = "MISSING_VALUE"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewUnknownFieldError reports a reference to a field the table does
// not contain.
func NewUnknownFieldError(field string) *AppError {
	return NewAppError(ErrTypeUnknownField, fmt.Sprintf("unknown field %q", field), nil).
		WithContext("field", field)
}

// NewDuplicateFieldError reports a field-name collision, typically
// produced by a rename rule mapping two fields to the same name.
func NewDuplicateFieldError(field string) *AppError {
	return NewAppError(ErrTypeDuplicateField, fmt.Sprintf("duplicate field name %q", field), nil).
		WithContext("field", field)
}

// NewMissingValueError reports a missing or unparseable item value
// encountered while summing a subscale.
func NewMissingValueError(group, field string, row int) *AppError {
	return NewAppError(ErrTypeMissingValue,
		fmt.Sprintf("missing value for field %q in group %q at row %d", field, group, row), nil).
		WithContext("group", group).
		WithContext("field", field).
		WithContext("row", row)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}
