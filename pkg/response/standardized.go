package response

import (
	"errors"
	"time"

	"datascout/internal/utils"
)

// StandardResponse represents a standardized API response
type StandardResponse struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	Message       string      `json:"message,omitempty"`
	CorrelationID string      `json:"correlationId"`
	Timestamp     time.Time   `json:"timestamp"`
}

// ErrorInfo represents error information in responses
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse creates a successful response
func SuccessResponse(data interface{}, correlationID string) *StandardResponse {
	return &StandardResponse{
		Success:       true,
		Data:          data,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// SuccessMessageResponse creates a successful response with a message
func SuccessMessageResponse(message, correlationID string) *StandardResponse {
	return &StandardResponse{
		Success:       true,
		Message:       message,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// ErrorResponse creates an error response
func ErrorResponse(code, message, details, correlationID string) *StandardResponse {
	return &StandardResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// ErrorResponseFromError creates an error response from any error. AppErrors keep
// their code and details; anything else is reported as an internal error without
// leaking its text.
func ErrorResponseFromError(err error, correlationID string) *StandardResponse {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(appErr.Code, appErr.Message, appErr.Details, correlationID)
	}
	return InternalServerErrorResponse(correlationID)
}

// ValidationErrorResponse creates a validation error response
func ValidationErrorResponse(message, details, correlationID string) *StandardResponse {
	return ErrorResponse(utils.ErrCodeValidationFailed, message, details, correlationID)
}

// NotFoundResponse creates a not found error response
func NotFoundResponse(message string, correlationID string) *StandardResponse {
	return ErrorResponse(utils.ErrCodeNotFound, message, "", correlationID)
}

// InternalServerErrorResponse creates an internal server error response
func InternalServerErrorResponse(correlationID string) *StandardResponse {
	return ErrorResponse(utils.ErrCodeInternalError, "An internal error occurred", "", correlationID)
}

// RateLimitResponse creates a rate limit exceeded response
func RateLimitResponse(details, correlationID string) *StandardResponse {
	return ErrorResponse(utils.ErrCodeRateLimitExceeded, "Rate limit exceeded. Please try again later.", details, correlationID)
}
