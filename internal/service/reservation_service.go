package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/notify"
	"go.uber.org/zap"
)

// HoldTTL is how long a reservation hold lasts from the moment of Reserve.
// Fixed policy, not configuration.
const HoldTTL = 5 * time.Minute

// ReservationService drives the slot state machine:
// Available → Held → Confirmed, or back to Available on cancel/expiry.
// Every transition is a single conditional write in the store; two students
// racing on the same slot means exactly one succeeds and the other gets
// ErrConflict.
type ReservationService struct {
	slots     SlotStore
	publisher notify.Publisher
	logger    *zap.Logger
}

func NewReservationService(slots SlotStore, publisher notify.Publisher, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		slots:     slots,
		publisher: publisher,
		logger:    logger,
	}
}

// Reserve places a 5-minute hold for the student. A prior hold whose expiry
// has lapsed does not block: the store treats it as available even before
// the sweep has run.
func (s *ReservationService) Reserve(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error) {
	now := time.Now()

	slot, err := s.slots.Reserve(ctx, slotID, studentID, now.Add(HoldTTL), now)
	if err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}
	if slot == nil {
		return nil, s.missedTransition(ctx, slotID)
	}

	s.logger.Info("Slot held",
		zap.String("slot_id", slotID.String()),
		zap.String("student_id", studentID.String()),
		zap.Time("hold_expires_at", *slot.HoldExpiresAt),
	)

	return slot, nil
}

// Confirm promotes the student's hold to a permanent booking. Fails with
// ErrConflict when the hold belongs to someone else, lapsed, or the slot is
// already confirmed.
func (s *ReservationService) Confirm(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error) {
	slot, err := s.slots.Confirm(ctx, slotID, studentID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	if slot == nil {
		return nil, s.missedTransition(ctx, slotID)
	}

	s.logger.Info("Slot confirmed",
		zap.String("slot_id", slotID.String()),
		zap.String("student_id", studentID.String()),
	)

	return slot, nil
}

// Cancel releases the student's hold back to available. Confirmed slots
// cannot be cancelled here.
func (s *ReservationService) Cancel(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error) {
	slot, err := s.slots.Release(ctx, slotID, studentID)
	if err != nil {
		return nil, fmt.Errorf("cancel: %w", err)
	}
	if slot == nil {
		return nil, s.missedTransition(ctx, slotID)
	}

	s.logger.Info("Hold released",
		zap.String("slot_id", slotID.String()),
		zap.String("student_id", studentID.String()),
	)

	if err := s.publisher.SlotReleased(ctx, slot); err != nil {
		s.logger.Warn("Failed to publish slot release", zap.Error(err))
	}

	return slot, nil
}

// missedTransition classifies a conditional update that matched no row: the
// slot either does not exist at all or is in a state the caller lost to.
func (s *ReservationService) missedTransition(ctx context.Context, slotID uuid.UUID) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err == nil && slot == nil {
		return ErrSlotNotFound
	}
	return ErrConflict
}

// ExpireStale resets every lapsed hold and reports how many slots it freed.
// Safe to run concurrently with itself and with in-flight transitions.
func (s *ReservationService) ExpireStale(ctx context.Context) (int, error) {
	freed, err := s.slots.ExpireStale(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("expire stale: %w", err)
	}

	for _, slot := range freed {
		if err := s.publisher.SlotReleased(ctx, slot); err != nil {
			s.logger.Warn("Failed to publish slot release",
				zap.String("slot_id", slot.ID.String()),
				zap.Error(err),
			)
		}
	}

	if len(freed) > 0 {
		s.logger.Info("Expired stale holds", zap.Int("count", len(freed)))
	}

	return len(freed), nil
}
