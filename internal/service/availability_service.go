package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/pricing"
	"github.com/mentorias-app/slots-service/internal/schedule"
	"go.uber.org/zap"
)

// AvailabilityService is the mentor-configuration surface: day replacement,
// listing and clearing, with overlap validation in front of every save.
type AvailabilityService struct {
	slots  SlotStore
	logger *zap.Logger
}

func NewAvailabilityService(slots SlotStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		slots:  slots,
		logger: logger,
	}
}

// ValidateDay checks a batch of proposed windows for one day against each
// other. Pure; no persistence involved.
func (s *AvailabilityService) ValidateDay(seeds []model.SlotSeed) schedule.Result {
	windows := make([]schedule.Window, len(seeds))
	for i, seed := range seeds {
		windows[i] = schedule.Window{StartMin: seed.StartMin, DurationMin: seed.DurationMin}
	}
	return schedule.CheckOverlaps(windows)
}

// ReplaceDay validates the proposed windows and atomically replaces the
// mentor's manual slots for the date. Seeds without a duration fall back to
// defaultDuration.
func (s *AvailabilityService) ReplaceDay(ctx context.Context, mentorID uuid.UUID, date time.Time, seeds []model.SlotSeed, defaultDuration int) error {
	if defaultDuration <= 0 {
		return newValidationError("default duration must be positive, got %d", defaultDuration)
	}

	normalized := make([]model.SlotSeed, len(seeds))
	for i, seed := range seeds {
		if seed.DurationMin == 0 {
			seed.DurationMin = defaultDuration
		}
		if seed.DurationMin < 0 {
			return newValidationError("slot at %s has negative duration", schedule.FormatClock(seed.StartMin))
		}
		if seed.StartMin < 0 || seed.StartMin >= 24*60 {
			return newValidationError("slot start %d is outside the day", seed.StartMin)
		}
		if seed.Modality != model.ModalityVirtual && seed.Modality != model.ModalityPresencial {
			return newValidationError("unknown modality %q", seed.Modality)
		}
		if seed.MaxParticipants == 0 {
			seed.MaxParticipants = 1
		}
		if seed.MaxParticipants < 1 || seed.MaxParticipants > pricing.MaxParticipants {
			return newValidationError("max participants %d is outside 1..%d", seed.MaxParticipants, pricing.MaxParticipants)
		}
		normalized[i] = seed
	}

	if result := s.ValidateDay(normalized); !result.Valid {
		return &ValidationError{
			Msg:       "day configuration has overlapping slots",
			Conflicts: result.Conflicts,
		}
	}

	// Booked, actively held and recurring slots survive a day replacement, so
	// a proposed window on one of their keys is rejected up front. The store
	// re-checks under its transaction; this is the friendly error.
	now := time.Now()
	for _, seed := range normalized {
		existing, err := s.slots.GetByKey(ctx, mentorID, date, seed.StartMin)
		if err != nil {
			return fmt.Errorf("check window at %s: %w", schedule.FormatClock(seed.StartMin), err)
		}
		if existing == nil {
			continue
		}
		if existing.Origin == model.OriginRecurring {
			return newValidationError("window at %s collides with a recurring slot", schedule.FormatClock(seed.StartMin))
		}
		if existing.IsConfirmed() || existing.IsHeld(now) {
			return newValidationError("window at %s collides with a booked or held slot", schedule.FormatClock(seed.StartMin))
		}
	}

	if err := s.slots.ReplaceDay(ctx, mentorID, date, normalized); err != nil {
		return fmt.Errorf("replace day: %w", err)
	}

	s.logger.Info("Day configuration replaced",
		zap.String("mentor_id", mentorID.String()),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("slots", len(normalized)),
	)

	return nil
}

// ListConfigured returns the mentor's own available slots in the range.
func (s *AvailabilityService) ListConfigured(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Slot, error) {
	return s.slots.ListConfigured(ctx, mentorID, from, to)
}

// ListGlobalAvailable returns every available slot across mentors for the
// calendar view.
func (s *AvailabilityService) ListGlobalAvailable(ctx context.Context, from, to time.Time) ([]*model.AvailableSlot, error) {
	return s.slots.ListGlobalAvailable(ctx, from, to)
}

// GetSlot looks a single slot up by its (mentor, date, time) key; nil when
// nothing is configured there.
func (s *AvailabilityService) GetSlot(ctx context.Context, mentorID uuid.UUID, date time.Time, startMin int) (*model.Slot, error) {
	return s.slots.GetByKey(ctx, mentorID, date, startMin)
}

// ClearDay removes the mentor's free manual slots for the date; recurring
// slots, confirmed bookings and active holds survive.
func (s *AvailabilityService) ClearDay(ctx context.Context, mentorID uuid.UUID, date time.Time) (int64, error) {
	removed, err := s.slots.ClearDay(ctx, mentorID, date)
	if err != nil {
		return 0, fmt.Errorf("clear day: %w", err)
	}

	s.logger.Info("Day configuration cleared",
		zap.String("mentor_id", mentorID.String()),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int64("removed", removed),
	)

	return removed, nil
}
