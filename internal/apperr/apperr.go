// Package apperr defines the rejection kinds shared by the availability
// and booking services. Every rejection returned to a caller wraps exactly
// one of these so the transport can render a specific message.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrDayClosed        = errors.New("day is not available for booking")
	ErrSlotDateMismatch = errors.New("time slot does not belong to the requested date's weekday")
	ErrSlotFull         = errors.New("time slot is fully booked")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyTerminal  = errors.New("appointment is already completed or cancelled")
	ErrNotFound         = errors.New("not found")
	ErrPersistence      = errors.New("persistence failure")
	ErrBusy             = errors.New("resource is busy, retry shortly")
)

// Reason codes rendered on the wire.
const (
	ReasonDayClosed        = "day_closed"
	ReasonSlotDateMismatch = "slot_date_mismatch"
	ReasonSlotFull         = "slot_full"
	ReasonInvalidInput     = "invalid_input"
	ReasonAlreadyTerminal  = "already_terminal"
	ReasonNotFound         = "not_found"
	ReasonPersistence      = "persistence_failure"
	ReasonBusy             = "busy"
	ReasonInternal         = "internal_error"
)

// Reason maps err to its machine readable code.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDayClosed):
		return ReasonDayClosed
	case errors.Is(err, ErrSlotDateMismatch):
		return ReasonSlotDateMismatch
	case errors.Is(err, ErrSlotFull):
		return ReasonSlotFull
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, ErrAlreadyTerminal):
		return ReasonAlreadyTerminal
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrBusy):
		return ReasonBusy
	case errors.Is(err, ErrPersistence):
		return ReasonPersistence
	default:
		return ReasonInternal
	}
}

// IsRejection reports whether err is an expected validation outcome rather
// than a system fault.
func IsRejection(err error) bool {
	switch Reason(err) {
	case ReasonDayClosed, ReasonSlotDateMismatch, ReasonSlotFull,
		ReasonInvalidInput, ReasonAlreadyTerminal, ReasonNotFound:
		return true
	}
	return false
}

// PersistenceError marks a storage layer failure while keeping its cause.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrPersistence, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence wraps err as a storage failure. Rejections and nil pass through
// untouched so repositories can use it on every return path.
func Persistence(op string, err error) error {
	if err == nil || IsRejection(err) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Invalid builds an ErrInvalidInput rejection with a detail message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
