// Package errors defines the stable error codes used across Jokebox and the
// JokeError type that carries them. HTTP status mapping lives in the api
// package so this package stays transport-agnostic.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidIndex indicates a lookup token that does not parse as a base-10 integer
	InvalidIndex ErrorCode = "INVALID_INDEX"
	// JokeNotFound indicates an index with no joke at that position
	JokeNotFound ErrorCode = "JOKE_NOT_FOUND"
	// DatasetEmpty indicates the dataset holds no jokes
	DatasetEmpty ErrorCode = "DATASET_EMPTY"
	// DatasetInvalid indicates the dataset file could not be decoded
	DatasetInvalid ErrorCode = "DATASET_INVALID"
	// Unauthorized indicates a missing or invalid API token
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// RateLimited indicates too many requests for one API key
	RateLimited ErrorCode = "RATE_LIMITED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// JokeError represents a Jokebox error with a stable code and message
type JokeError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new JokeError
func New(code ErrorCode, message string) *JokeError {
	return &JokeError{Code: code, Message: message}
}

// Wrap creates a new JokeError around an underlying cause
func Wrap(code ErrorCode, message string, cause error) *JokeError {
	return &JokeError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *JokeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *JokeError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *JokeError) WithDetails(details interface{}) *JokeError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from err, walking the wrap chain.
// Returns InternalError for anything that is not a JokeError.
func CodeOf(err error) ErrorCode {
	var je *JokeError
	if errors.As(err, &je) {
		return je.Code
	}
	return InternalError
}
