// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Resolver errors.
	ErrDaemonUnreachable = errors.New("resolver daemon unreachable")
	ErrResolveStalled    = errors.New("resolution stalled")
	ErrResolveFailed     = errors.New("resolution failed")

	// Verification errors.
	ErrVerification = errors.New("artifact verification failed")

	// Catalog errors.
	ErrPersistence   = errors.New("catalog write failed")
	ErrCatalogLocked = errors.New("catalog locked by another process")

	// Startup errors.
	ErrStartup       = errors.New("startup failed")
	ErrMissingConfig = errors.New("missing configuration")

	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
// Transient resolver conditions retry; verification failures and
// persistence failures do not.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrDaemonUnreachable) ||
		errors.Is(err, ErrResolveStalled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
