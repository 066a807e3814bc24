package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyTracked is returned when the container is still being tracked
	// for the same shipowner, or already finished under the same master BL
	ErrAlreadyTracked = errors.New("container is already registered")

	// ErrNotFoundAtCarrier is returned when the carrier does not know the container
	ErrNotFoundAtCarrier = errors.New("container number was not found at the shipowner")

	// ErrContainerNotFound is returned when no stored container matches
	ErrContainerNotFound = errors.New("container not found")

	// ErrMissingID is returned when updating a container that was never saved
	ErrMissingID = errors.New("container has no storage id")

	// ErrScheduleConflict is returned when the schedule changed since it was read
	ErrScheduleConflict = errors.New("search scheduling was modified concurrently")

	// ErrCarrierUnavailable is returned when the carrier reports a failed lookup
	ErrCarrierUnavailable = errors.New("carrier tracking lookup failed")
)

// ValidationError reports a missing or malformed field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnexpectedError wraps a failure that has no specific kind
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
