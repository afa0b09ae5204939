package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("reservation is not in the required state")
)

// ValidationError signals malformed or missing input. It is reported to the
// caller immediately and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError carries the window of the reservation that blocked a create
// or reschedule, so the caller can adjust.
type ConflictError struct {
	VehicleID        int64
	PickupAt         time.Time
	ExpectedReturnAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %d already reserved from %s to %s",
		e.VehicleID, e.PickupAt.Format(time.RFC3339), e.ExpectedReturnAt.Format(time.RFC3339))
}
