package service

import (
	"errors"
	"fmt"

	"github.com/mentorias-app/slots-service/internal/schedule"
)

var (
	// ErrSlotNotFound signals that no slot exists for the given id.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrConflict signals a lost race: another actor transitioned the slot
	// first. Callers should refresh slot state and let the user pick again.
	ErrConflict = errors.New("slot transition conflict")

	// ErrSlotNoLongerAvailable signals that a hold expired or was stolen
	// between selection and checkout; the booking flow must restart.
	ErrSlotNoLongerAvailable = errors.New("slot no longer available")

	// ErrAlreadyBooked signals a duplicate completion attempt on a slot
	// that is already confirmed for the same holder.
	ErrAlreadyBooked = errors.New("slot already booked")

	// ErrPaymentFailed signals a declined payment; the hold is kept so the
	// student can retry within the hold window.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrInconsistency signals that a session was created but the slot
	// confirmation failed. Surfaced distinctly so reconciliation can find
	// and repair the orphan; no automatic rollback is attempted.
	ErrInconsistency = errors.New("booking state inconsistent")
)

// ValidationError reports malformed input with enough detail for the caller
// to correct it, including the overlapping window pairs when the day
// configuration conflicts with itself.
type ValidationError struct {
	Msg       string
	Conflicts []schedule.Conflict
}

func (e *ValidationError) Error() string {
	if len(e.Conflicts) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (%d conflicting windows)", e.Msg, len(e.Conflicts))
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
