package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNotFound           ErrorType = "NOT_FOUND"
	ErrTypeParsing            ErrorType = "PARSING"
	ErrTypeEmptySeries        ErrorType = "EMPTY_SERIES"
	ErrTypeInvalidSeries      ErrorType = "INVALID_SERIES"
	ErrTypeDomain             ErrorType = "DOMAIN"
	ErrTypeNonMonotonic       ErrorType = "NON_MONOTONIC"
	ErrTypeInvalidSampleCount ErrorType = "INVALID_SAMPLE_COUNT"
	ErrTypeValidation         ErrorType = "VALIDATION"
	ErrTypeConfig             ErrorType = "CONFIG"
)

// Sentinels for errors.Is matching. A sentinel matches any AppError of the
// same type regardless of message or cause.
var (
	ErrFileNotFound       = &AppError{Type: ErrTypeNotFound}
	ErrDataFormat         = &AppError{Type: ErrTypeParsing}
	ErrEmptySeries        = &AppError{Type: ErrTypeEmptySeries}
	ErrInvalidSeries      = &AppError{Type: ErrTypeInvalidSeries}
	ErrDomain             = &AppError{Type: ErrTypeDomain}
	ErrNonMonotonicInput  = &AppError{Type: ErrTypeNonMonotonic}
	ErrInvalidSampleCount = &AppError{Type: ErrTypeInvalidSampleCount}
	ErrValidation         = &AppError{Type: ErrTypeValidation}
	ErrConfig             = &AppError{Type: ErrTypeConfig}
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
	if e.Message == "" {
		return fmt.Sprintf("[%s]", e.Type)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == "" && t.Cause == nil
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

// TypeOf returns the ErrorType carried by err, or "" when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper functions for common error types

// NewFileNotFoundError creates an error for a missing source file
func NewFileNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("file %s not found", path), cause).
		WithContext("path", path)
}

// NewDataFormatError creates a parsing error for a CSV line
func NewDataFormatError(line int, message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, fmt.Sprintf("line %d: %s", line, message), cause).
		WithContext("line", line)
}

// NewEmptySeriesError creates an error for a series with no rows left
func NewEmptySeriesError(message string) *AppError {
	return NewAppError(ErrTypeEmptySeries, message, nil)
}

// NewInvalidSeriesError creates an error for a malformed descending portion
func NewInvalidSeriesError(message string) *AppError {
	return NewAppError(ErrTypeInvalidSeries, message, nil)
}

// NewDomainError creates an error for an interpolation query outside [lo, hi]
func NewDomainError(name string, x, lo, hi float64) *AppError {
	return NewAppError(ErrTypeDomain,
		fmt.Sprintf("%s: %g outside interpolation range [%g, %g]", name, x, lo, hi), nil).
		WithContext("x", x).
		WithContext("lo", lo).
		WithContext("hi", hi)
}

// NewNonMonotonicError creates an error for an x axis that is not strictly increasing
func NewNonMonotonicError(name string, index int) *AppError {
	return NewAppError(ErrTypeNonMonotonic,
		fmt.Sprintf("%s: x axis not strictly increasing at index %d", name, index), nil).
		WithContext("index", index)
}

// NewInvalidSampleCountError creates an error for a resample count below two
func NewInvalidSampleCountError(count int) *AppError {
	return NewAppError(ErrTypeInvalidSampleCount,
		fmt.Sprintf("resample count must be at least 2, got %d", count), nil).
		WithContext("count", count)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
