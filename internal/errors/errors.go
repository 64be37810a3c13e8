// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrCatalogLoad indicates the course catalog could not be loaded.
	// This is fatal at startup: the bot cannot answer course queries
	// without a catalog.
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrInvalidRecord indicates a single catalog record is unusable
	// (e.g., its name normalizes to an empty string). Recoverable: the
	// record is skipped and logged.
	ErrInvalidRecord = errors.New("invalid catalog record")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidSignature indicates a webhook delivery failed HMAC verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrLowConfidence indicates the NLU classifier returned a result
	// below the configured confidence threshold. Treated as "no match".
	ErrLowConfidence = errors.New("nlu confidence below threshold")

	// ErrSendFailed indicates the outbound message could not be delivered
	// after the retry budget was exhausted.
	ErrSendFailed = errors.New("outbound send failed")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// SendError represents outbound delivery failures with provider context.
type SendError struct {
	Recipient  string
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("send error (to=%s, status=%d): %v", e.Recipient, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("send error (to=%s): %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// NewSendError creates a new send error.
func NewSendError(recipient string, statusCode int, err error) *SendError {
	return &SendError{
		Recipient:  recipient,
		StatusCode: statusCode,
		Err:        err,
	}
}
