package notify

import (
	"context"

	"github.com/mentorias-app/slots-service/internal/model"
)

// NATS subjects consumed by the notification worker.
const (
	SubjectBookingCompleted = "mentorias.booking.completed"
	SubjectSlotReleased     = "mentorias.slot.released"
)

// Publisher hands booking outcomes and freed slots to the notification
// layer. This service only exposes the data; message formatting and delivery
// happen downstream.
type Publisher interface {
	BookingCompleted(ctx context.Context, session *model.Session, slot *model.Slot) error
	SlotReleased(ctx context.Context, slot *model.Slot) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) BookingCompleted(ctx context.Context, session *model.Session, slot *model.Slot) error {
	return nil
}

func (NopPublisher) SlotReleased(ctx context.Context, slot *model.Slot) error {
	return nil
}
