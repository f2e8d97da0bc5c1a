package tooldir

import (
	"errors"
	"fmt"
	"time"
)

// Standard errors returned by the SDK.
var (
	// ErrValidation indicates invalid input, rejected locally or by the server.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")
	// ErrRateLimit indicates too many requests.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// APIError represents an error response from the API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Code is the machine readable error code, e.g. "VALIDATION_ERROR".
	Code string
	// Message is the error message.
	Message string
	// Field names the offending input, when the server reported one.
	Field string
	// RetryAfter is set on rate limit errors.
	RetryAfter time.Duration
	RateLimit  *RateLimit
	// Err is the underlying error type.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (status %d)", e.Err.Error(), e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input validation failure caught before a
// request was sent.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap returns ErrValidation for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// newAPIError maps a status code to one of the standard errors.
func newAPIError(statusCode int, code, message, field string) *APIError {
	err := &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Field:      field,
	}

	switch statusCode {
	case 400:
		err.Err = ErrValidation
	case 404:
		err.Err = ErrNotFound
	case 429:
		err.Err = ErrRateLimit
	}

	return err
}
