package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes booking and slot events to a NATS broker.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the broker at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("slots-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

type bookingCompletedEvent struct {
	SessionID   uuid.UUID      `json:"session_id"`
	SlotID      uuid.UUID      `json:"slot_id"`
	MentorID    uuid.UUID      `json:"mentor_id"`
	StudentID   uuid.UUID      `json:"student_id"`
	SubjectID   uuid.UUID      `json:"subject_id"`
	StartsAt    time.Time      `json:"starts_at"`
	DurationMin int            `json:"duration_min"`
	Modality    model.Modality `json:"modality"`
}

type slotReleasedEvent struct {
	SlotID      uuid.UUID      `json:"slot_id"`
	MentorID    uuid.UUID      `json:"mentor_id"`
	Date        time.Time      `json:"date"`
	StartMin    int            `json:"start_min"`
	DurationMin int            `json:"duration_min"`
	Modality    model.Modality `json:"modality"`
}

// BookingCompleted publishes a completed booking.
func (p *NATSPublisher) BookingCompleted(ctx context.Context, session *model.Session, slot *model.Slot) error {
	event := bookingCompletedEvent{
		SessionID:   session.ID,
		SlotID:      slot.ID,
		MentorID:    session.MentorID,
		StudentID:   session.StudentID,
		SubjectID:   session.SubjectID,
		StartsAt:    session.StartsAt,
		DurationMin: session.DurationMin,
		Modality:    session.Modality,
	}

	return p.publish(SubjectBookingCompleted, event)
}

// SlotReleased publishes a slot freed by cancellation or expiry.
func (p *NATSPublisher) SlotReleased(ctx context.Context, slot *model.Slot) error {
	event := slotReleasedEvent{
		SlotID:      slot.ID,
		MentorID:    slot.MentorID,
		Date:        slot.Date,
		StartMin:    slot.StartMin,
		DurationMin: slot.DurationMin,
		Modality:    slot.Modality,
	}

	return p.publish(SubjectSlotReleased, event)
}

func (p *NATSPublisher) publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	return nil
}
