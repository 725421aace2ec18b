// Package errors provides standardized error handling for the agent pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Parse / plan errors
	ErrCodeParseFailed     ErrorCode = "PARSE_FAILED"
	ErrCodeStepNotAllowed  ErrorCode = "NOT_ALLOWED"
	ErrCodeStepException   ErrorCode = "EXCEPTION"

	// Store errors (technical failures, not business rejections)
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	// Catalog / notification
	ErrCodeCatalogLoadFailed      ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewParseFailedError marks a message whose structured output was rejected.
// Non-retryable: the caller answers with a generic rephrase prompt.
func NewParseFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseFailed,
		Message:   "Structured output failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepNotAllowedError marks a plan step outside the action whitelist.
func NewStepNotAllowedError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepNotAllowed,
		Message:   "Plan step action is not whitelisted",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepExceptionError wraps a fault raised while executing a plan step.
func NewStepExceptionError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepException,
		Message:   "Plan step execution fault",
		Details:   fmt.Sprintf("action: %s, error: %s", action, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(op string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", op),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogLoadFailedError creates a non-retryable catalog load error. The
// catalog loader falls back to the built-in restaurant instead of failing.
func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Restaurant catalog load failed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(method string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("method: %s, error: %s", method, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // parse/plan errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
