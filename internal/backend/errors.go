package backend

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for backend calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the backend took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the backend returned a body we could not decode
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorTokenInvalid indicates the registration token was rejected
	ErrorTokenInvalid ErrorCategory = "token_invalid"

	// ErrorTokenExpired indicates the backend considers the token expired
	ErrorTokenExpired ErrorCategory = "token_expired"

	// ErrorValidation indicates the backend rejected the payload
	ErrorValidation ErrorCategory = "validation"

	// ErrorNotFound indicates no candidate endpoint exists for the operation
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorOutage indicates the backend is unreachable or failing
	ErrorOutage ErrorCategory = "outage"

	// ErrorInternal indicates an unexpected client-side error
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps backend failures with normalized categorization.
type Error struct {
	Category   ErrorCategory
	Op         Operation
	Status     int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("backend %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("backend %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a normalized backend error.
func NewError(category ErrorCategory, op Operation, status int, message string, underlying error) *Error {
	retryable := category == ErrorTimeout || category == ErrorOutage
	return &Error{
		Category:   category,
		Op:         op,
		Status:     status,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}

// CategoryOf extracts the error category from an error.
func CategoryOf(err error) ErrorCategory {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return ErrorInternal
}

// MessageOf returns the backend-supplied message when there is one, falling
// back to err.Error().
func MessageOf(err error) string {
	var be *Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
