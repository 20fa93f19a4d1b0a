package errors

import (
	"fmt"
	"net/http"
)

// NewAPIError creates an error for a failed call to an external
// service. Server-side and rate-limit failures are marked retryable.
func NewAPIError(service, endpoint string, statusCode int, err error) *AppError {
	code := ErrCodeInstagramAPI
	if service == "discord" {
		code = ErrCodeDiscordAPI
	}
	return &AppError{
		Code:      code,
		Message:   fmt.Sprintf("%s request to %s failed with status %d", service, endpoint, statusCode),
		Cause:     err,
		Retryable: statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests,
	}
}

// NewAuthError creates an authentication error. Auth errors are
// retryable in the sense that a re-login may clear them.
func NewAuthError(reason string) *AppError {
	return &AppError{
		Code:      ErrCodeAuthentication,
		Message:   reason,
		Retryable: true,
	}
}

// NewDatabaseError creates an error for a failed archive operation
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDatabaseQuery,
		Message: fmt.Sprintf("database %s failed", operation),
		Cause:   err,
	}
}
