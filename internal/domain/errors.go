package domain

import (
	"errors"
	"fmt"
)

// Predefined domain errors.
var (
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput indicates the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInternal indicates an internal failure.
	ErrInternal = errors.New("internal error")

	// ErrNotConfigured indicates the completion credential is absent.
	ErrNotConfigured = errors.New("completion provider not configured")
	// ErrUpstreamAuth indicates the upstream rejected the server credential.
	ErrUpstreamAuth = errors.New("upstream authentication failed")
	// ErrUpstreamRateLimited indicates the upstream rate limit was hit.
	ErrUpstreamRateLimited = errors.New("upstream rate limit exceeded")

	// ErrBusy indicates an operation was rejected because another one is
	// already in flight.
	ErrBusy = errors.New("operation already in flight")
	// ErrNoUser indicates no authenticated user is attached to the session.
	ErrNoUser = errors.New("no authenticated user")
	// ErrNoChat indicates no chat is currently selected.
	ErrNoChat = errors.New("no chat selected")
)

// DomainError carries a stable code and a user-facing message alongside the
// wrapped cause.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface for logging and internal propagation.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the user-facing message without internal detail.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a resource-not-found error.
func NewNotFoundError(resourceType, id string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError creates a validation error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewInternalError wraps an unexpected failure without exposing detail.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a resource-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotConfigured reports whether err is a missing-credential error.
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}

// IsUpstreamAuth reports whether err is an upstream credential rejection.
func IsUpstreamAuth(err error) bool {
	return errors.Is(err, ErrUpstreamAuth)
}

// IsUpstreamRateLimited reports whether err is an upstream rate limit.
func IsUpstreamRateLimited(err error) bool {
	return errors.Is(err, ErrUpstreamRateLimited)
}
