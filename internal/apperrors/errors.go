// Package apperrors defines the application error taxonomy shared by the
// service and HTTP layers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeBadRequest ErrorType = "bad_request"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal_error"
)

// AppError carries an error type, a user-facing message and the HTTP status
// code it maps to.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError reports a value that violates a column constraint:
// length, nullability or enum membership.
func NewValidationError(message string, details ...string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError reports a missing record.
func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewBadRequestError reports a malformed request.
func NewBadRequestError(message string, details ...string) *AppError {
	return newError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewConflictError reports a state conflict.
func NewConflictError(message string, details ...string) *AppError {
	return newError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

func newError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Code: code, Details: detail}
}

// Get extracts an AppError from err, or nil if it is not one.
func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}
