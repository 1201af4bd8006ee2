package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories, services and webhook handlers.
// Callers classify with errors.Is; wrapping keeps the original context.
var (
	// ErrInvalidInput marks a structurally invalid request rejected before
	// any persistence attempt.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup miss on a local entity. For webhook
	// handling this is an expected outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrMalformedEvent marks an inbound notification missing required
	// fields for its declared type. Never worth retrying.
	ErrMalformedEvent = errors.New("malformed event")

	// ErrTransient marks a temporarily unavailable dependency. The delivery
	// mechanism may retry.
	ErrTransient = errors.New("transient dependency failure")
)

func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func MalformedEvent(msg string) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, msg)
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
