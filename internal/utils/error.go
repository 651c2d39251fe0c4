package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes with HTTP status mapping
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"

	// Target database errors
	ErrCodeUnsupportedEngine   = "UNSUPPORTED_ENGINE"
	ErrCodeConnectionFailed    = "CONNECTION_FAILED"
	ErrCodeIntrospectionFailed = "INTROSPECTION_FAILED"
	ErrCodeNormalizationFailed = "NORMALIZATION_FAILED"

	// Annotation store errors
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
	ErrCodeResetFailed       = "RESET_FAILED"
	ErrCodeReinitFailed      = "REINIT_FAILED"
)

// HTTPStatus maps error codes to HTTP status codes
var HTTPStatus = map[string]int{
	ErrCodeInvalidRequest:     http.StatusBadRequest,
	ErrCodeValidationFailed:   http.StatusUnprocessableEntity,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeRateLimitExceeded:  http.StatusTooManyRequests,

	ErrCodeUnsupportedEngine:   http.StatusBadRequest,
	ErrCodeConnectionFailed:    http.StatusBadRequest,
	ErrCodeIntrospectionFailed: http.StatusBadRequest,
	ErrCodeNormalizationFailed: http.StatusBadRequest,

	ErrCodePersistenceFailed: http.StatusInternalServerError,
	ErrCodeResetFailed:       http.StatusInternalServerError,
	ErrCodeReinitFailed:      http.StatusInternalServerError,
}

// AppError represents an application error with additional context
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Details != "" {
		msg += " - " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError by code, so sentinel-style comparisons work
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// ErrorBuilder provides a fluent interface for creating errors
type ErrorBuilder struct {
	code    string
	message string
	details string
	cause   error
}

// NewErrorBuilder creates a new error builder
func NewErrorBuilder(code string) *ErrorBuilder {
	return &ErrorBuilder{code: code}
}

// WithMessage sets the error message
func (eb *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	eb.message = message
	return eb
}

// WithDetails sets the error details
func (eb *ErrorBuilder) WithDetails(details string) *ErrorBuilder {
	eb.details = details
	return eb
}

// WithCause sets the underlying error cause
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.cause = cause
	return eb
}

// Build constructs the final AppError
func (eb *ErrorBuilder) Build() *AppError {
	if eb.message == "" {
		eb.message = getDefaultMessage(eb.code)
	}

	return &AppError{
		Code:    eb.code,
		Message: eb.message,
		Details: eb.details,
		Cause:   eb.cause,
	}
}

func getDefaultMessage(code string) string {
	messages := map[string]string{
		ErrCodeInvalidRequest:     "The request is invalid",
		ErrCodeValidationFailed:   "Validation failed",
		ErrCodeNotFound:           "Resource not found",
		ErrCodeInternalError:      "Internal server error",
		ErrCodeServiceUnavailable: "Service temporarily unavailable",
		ErrCodeRateLimitExceeded:  "Rate limit exceeded",

		ErrCodeUnsupportedEngine:   "Unsupported database engine",
		ErrCodeConnectionFailed:    "Could not connect to the database",
		ErrCodeIntrospectionFailed: "Could not read the database catalog",
		ErrCodeNormalizationFailed: "Malformed catalog data",

		ErrCodePersistenceFailed: "Could not persist to the annotation store",
		ErrCodeResetFailed:       "Could not reset the annotation store",
		ErrCodeReinitFailed:      "Annotation store was reset but could not be re-initialized",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown error"
}

// Convenience functions for the core error kinds

func NewConnectionError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodeConnectionFailed).WithCause(cause).WithDetails(details).Build()
}

func NewIntrospectionError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodeIntrospectionFailed).WithCause(cause).WithDetails(details).Build()
}

func NewNormalizationError(details string) *AppError {
	return NewErrorBuilder(ErrCodeNormalizationFailed).WithDetails(details).Build()
}

func NewPersistenceError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodePersistenceFailed).WithCause(cause).WithDetails(details).Build()
}

func NewUnsupportedEngineError(kind string) *AppError {
	return NewErrorBuilder(ErrCodeUnsupportedEngine).
		WithDetails(fmt.Sprintf("engine %q is not supported", kind)).
		Build()
}

func NewNotFoundError(resource string) *AppError {
	return NewErrorBuilder(ErrCodeNotFound).
		WithMessage(fmt.Sprintf("%s not found", resource)).
		Build()
}

func NewValidationError(message string, details string) *AppError {
	return NewErrorBuilder(ErrCodeValidationFailed).
		WithMessage(message).
		WithDetails(details).
		Build()
}

// IsErrorType checks if an error chain contains an AppError with the given code
func IsErrorType(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, exists := HTTPStatus[appErr.Code]; exists {
			return status
		}
	}
	return http.StatusInternalServerError
}
