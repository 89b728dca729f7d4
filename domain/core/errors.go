package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound = errors.New("resource not found")

	// Validation errors
	ErrInvalidWindow = errors.New("invalid campaign window")

	// Upstream errors
	ErrSourceUnavailable = errors.New("upstream source unavailable")
	ErrMalformedPayload  = errors.New("malformed upstream payload")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) ||
		errors.Is(err, ErrMalformedPayload)
}
