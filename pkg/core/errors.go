package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: search_exhausted, decode_failed, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same code.
// Copies made by WithCause/WithMessage/WithDetails still match the predefined value.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Search errors
	ErrDirectionIndeterminate = &ExecutionError{
		Category: ErrCategorySearch,
		Code:     "direction_indeterminate",
		Message:  "swipe direction could not be determined",
	}
	ErrSearchExhausted = &ExecutionError{
		Category: ErrCategorySearch,
		Code:     "search_exhausted",
		Message:  "target not reached within the gesture budget",
	}
	ErrDecodeFailed = &ExecutionError{
		Category: ErrCategorySearch,
		Code:     "decode_failed",
		Message:  "item label could not be decoded",
	}
	ErrCancelled = &ExecutionError{
		Category: ErrCategorySearch,
		Code:     "cancelled",
		Message:  "search cancelled",
	}
	ErrSessionBusy = &ExecutionError{
		Category: ErrCategorySearch,
		Code:     "session_busy",
		Message:  "a search is already running on this view session",
	}

	// Gesture errors
	ErrGestureFailed = &ExecutionError{
		Category: ErrCategoryGesture,
		Code:     "gesture_failed",
		Message:  "gesture did not execute",
	}
	ErrActionFailed = &ExecutionError{
		Category: ErrCategoryGesture,
		Code:     "action_failed",
		Message:  "target action failed",
	}
	ErrRefreshFailed = &ExecutionError{
		Category: ErrCategoryGesture,
		Code:     "refresh_failed",
		Message:  "refresh probe failed",
	}

	// Element errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrContainerNotFound = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "container_not_found",
		Message:  "scrollable container not found",
	}

	// Connection errors
	ErrDeviceDisconnected = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "device_disconnected",
		Message:  "device connection lost",
	}
	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}

	// Config errors
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}
	ErrInvalidTarget = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_target",
		Message:  "target value cannot be parsed for this view",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Code returns the machine-readable code of err, or "" when err is not an ExecutionError.
func Code(err error) string {
	var e *ExecutionError
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
