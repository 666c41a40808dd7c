package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Modality is the delivery mode of a mentoring session.
type Modality string

const (
	ModalityVirtual    Modality = "virtual"
	ModalityPresencial Modality = "presencial"
)

// Origin distinguishes manually configured slots from generator-produced ones.
type Origin string

const (
	OriginManual    Origin = "manual"
	OriginRecurring Origin = "recurring"
)

// Slot is a bookable time window offered by a mentor.
//
// Hold semantics: Available=false with a non-nil HoldExpiresAt is a temporary
// hold that self-releases once the expiry elapses; Available=false with a nil
// HoldExpiresAt is a confirmed booking.
type Slot struct {
	ID              uuid.UUID  `json:"id"`
	MentorID        uuid.UUID  `json:"mentor_id"`
	Date            time.Time  `json:"date"`
	StartMin        int        `json:"start_min"`
	DurationMin     int        `json:"duration_min"`
	Modality        Modality   `json:"modality"`
	Location        *string    `json:"location"` // meaningful only for presencial
	MaxParticipants int        `json:"max_participants"`
	Origin          Origin     `json:"origin"`
	Available       bool       `json:"available"`
	HeldBy          *uuid.UUID `json:"held_by"`
	HoldExpiresAt   *time.Time `json:"hold_expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StartClock returns the start time as "HH:MM".
func (s *Slot) StartClock() string {
	return fmt.Sprintf("%02d:%02d", s.StartMin/60, s.StartMin%60)
}

// StartsAt combines the slot's date and start time into a single timestamp.
func (s *Slot) StartsAt() time.Time {
	return s.Date.Add(time.Duration(s.StartMin) * time.Minute)
}

// IsHeld reports whether the slot carries an unexpired hold.
func (s *Slot) IsHeld(now time.Time) bool {
	return !s.Available && s.HoldExpiresAt != nil && s.HoldExpiresAt.After(now)
}

// IsHeldBy reports whether the slot is currently held by the given student.
func (s *Slot) IsHeldBy(studentID uuid.UUID, now time.Time) bool {
	return s.IsHeld(now) && s.HeldBy != nil && *s.HeldBy == studentID
}

// IsConfirmed reports whether the slot is permanently booked.
func (s *Slot) IsConfirmed() bool {
	return !s.Available && s.HoldExpiresAt == nil
}

// SlotSeed is one proposed window of a mentor's day configuration, already
// normalized at the boundary (duration defaulted, start in minutes since
// midnight).
type SlotSeed struct {
	StartMin        int
	DurationMin     int
	Modality        Modality
	Location        *string
	MaxParticipants int
}

// AvailableSlot is a slot enriched with mentor display metadata, as returned
// by the global availability listing.
type AvailableSlot struct {
	Slot
	MentorName      string  `json:"mentor_name"`
	MentorAvatarURL *string `json:"mentor_avatar_url"`
}
