package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
)

// SlotStore owns slot persistence. All availability/hold transitions go
// through its conditional updates; the storage layer's compare-and-swap is
// the sole source of mutual exclusion, so implementations must never apply
// a transition as a read-then-write.
type SlotStore interface {
	// ReplaceDay atomically removes the mentor's free manual slots for the
	// date and inserts the seeds, keyed on (mentor, date, start time).
	// Booked slots, active holds and recurring slots survive; a seed landing
	// on a surviving key is an error.
	ReplaceDay(ctx context.Context, mentorID uuid.UUID, date time.Time, seeds []model.SlotSeed) error

	// ListConfigured returns the mentor's own available slots in the range,
	// ordered by date then time.
	ListConfigured(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Slot, error)

	// ListGlobalAvailable returns every currently available slot across
	// mentors, enriched with mentor display metadata, ordered by date then
	// time.
	ListGlobalAvailable(ctx context.Context, from, to time.Time) ([]*model.AvailableSlot, error)

	// GetByID is a point lookup; returns nil when no slot exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)

	// GetByKey looks a slot up by its (mentor, date, start time) key.
	GetByKey(ctx context.Context, mentorID uuid.UUID, date time.Time, startMin int) (*model.Slot, error)

	// ClearDay removes only free manual-origin slots for the date and
	// returns how many were removed. Booked slots, active holds and
	// recurring slots survive.
	ClearDay(ctx context.Context, mentorID uuid.UUID, date time.Time) (int64, error)

	// Reserve conditionally places a hold: it succeeds only when the slot
	// is available or its prior hold has lapsed by now. Returns nil when
	// the condition did not match.
	Reserve(ctx context.Context, slotID, studentID uuid.UUID, expiresAt, now time.Time) (*model.Slot, error)

	// Confirm conditionally promotes an unexpired hold owned by studentID
	// to a permanent booking. Returns nil when the condition did not match.
	Confirm(ctx context.Context, slotID, studentID uuid.UUID, now time.Time) (*model.Slot, error)

	// Release conditionally returns a held slot to available; only the
	// holder may release and confirmed slots never match. Returns nil when
	// the condition did not match.
	Release(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error)

	// ExpireStale resets every hold whose expiry has passed and returns the
	// freed slots. Safe to run concurrently with itself and with in-flight
	// transitions.
	ExpireStale(ctx context.Context, now time.Time) ([]*model.Slot, error)
}

// SessionStore owns session rows created by the booking orchestrator.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetBySlotID(ctx context.Context, slotID uuid.UUID) (*model.Session, error)
}

// MentorStore holds the mentor display metadata mirrored from the identity
// layer.
type MentorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Mentor, error)
	Upsert(ctx context.Context, mentor *model.Mentor) error
}
