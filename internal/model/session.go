package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus of a completed booking's payment.
type PaymentStatus string

const (
	PaymentStatusApproved PaymentStatus = "approved"
)

// Session is the persisted record of a completed, paid booking. Created
// exactly once per successful booking; immutable afterwards.
type Session struct {
	ID                uuid.UUID     `json:"id"`
	SlotID            uuid.UUID     `json:"slot_id"`
	MentorID          uuid.UUID     `json:"mentor_id"`
	StudentID         uuid.UUID     `json:"student_id"`
	SubjectID         uuid.UUID     `json:"subject_id"`
	StartsAt          time.Time     `json:"starts_at"`
	DurationMin       int           `json:"duration_min"`
	Modality          Modality      `json:"modality"`
	PriceCents        int           `json:"price_cents"`
	ParticipantCount  int           `json:"participant_count"`
	ParticipantEmails []string      `json:"participant_emails"`
	Note              string        `json:"note,omitempty"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	PaymentReference  string        `json:"payment_reference,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}
