package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/notify"
	"github.com/mentorias-app/slots-service/internal/payment"
	"github.com/mentorias-app/slots-service/internal/pricing"
	"go.uber.org/zap"
)

// BookingRequest carries everything needed to turn a held slot into a paid
// session.
type BookingRequest struct {
	SlotID            uuid.UUID
	StudentID         uuid.UUID
	SubjectID         uuid.UUID
	ParticipantCount  int
	ParticipantEmails []string
	Note              string
}

// BookingService orchestrates checkout: re-check the hold, validate
// participants, price, charge, persist the session and confirm the slot.
type BookingService struct {
	slots       SlotStore
	sessions    SessionStore
	gateway     payment.Gateway
	publisher   notify.Publisher
	emailDomain string
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewBookingService(
	slots SlotStore,
	sessions SessionStore,
	gateway payment.Gateway,
	publisher notify.Publisher,
	emailDomain string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		slots:       slots,
		sessions:    sessions,
		gateway:     gateway,
		publisher:   publisher,
		emailDomain: emailDomain,
		validate:    validator.New(),
		logger:      logger,
	}
}

// CompleteBooking finishes checkout for a slot the student already holds.
//
// On a declined payment the hold is left untouched so the student can retry
// within the hold window. On success exactly one session row is created and
// the slot moves Held → Confirmed; if that last transition fails after the
// session exists, ErrInconsistency is returned so reconciliation can find
// the orphan.
func (s *BookingService) CompleteBooking(ctx context.Context, req BookingRequest) (*model.Session, error) {
	now := time.Now()

	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	if slot.IsConfirmed() {
		if slot.HeldBy != nil && *slot.HeldBy == req.StudentID {
			return nil, ErrAlreadyBooked
		}
		return nil, ErrSlotNoLongerAvailable
	}

	// The hold may have expired or been stolen between slot selection and
	// checkout submission.
	if !slot.IsHeldBy(req.StudentID, now) {
		return nil, ErrSlotNoLongerAvailable
	}

	if err := s.validateParticipants(slot, req); err != nil {
		return nil, err
	}

	price, err := pricing.ForSession(slot.Modality, req.ParticipantCount)
	if err != nil {
		return nil, newValidationError("price lookup: %v", err)
	}

	description := fmt.Sprintf("Mentoring session %s %s", slot.Date.Format("2006-01-02"), slot.StartClock())
	result, err := s.gateway.Charge(ctx, price, req.ParticipantEmails[0], description)
	if err != nil {
		// Transport failure, not a decline. The hold stays so the
		// student can retry.
		return nil, fmt.Errorf("charge payment: %w", err)
	}
	if !result.Approved {
		s.logger.Info("Payment declined",
			zap.String("slot_id", req.SlotID.String()),
			zap.String("student_id", req.StudentID.String()),
		)
		return nil, ErrPaymentFailed
	}

	session := &model.Session{
		ID:                uuid.New(),
		SlotID:            slot.ID,
		MentorID:          slot.MentorID,
		StudentID:         req.StudentID,
		SubjectID:         req.SubjectID,
		StartsAt:          slot.StartsAt(),
		DurationMin:       slot.DurationMin,
		Modality:          slot.Modality,
		PriceCents:        price,
		ParticipantCount:  req.ParticipantCount,
		ParticipantEmails: req.ParticipantEmails,
		Note:              req.Note,
		PaymentStatus:     model.PaymentStatusApproved,
		PaymentReference:  result.Reference,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	confirmed, err := s.slots.Confirm(ctx, slot.ID, req.StudentID, time.Now())
	if err != nil {
		s.logger.Error("Session created but slot confirmation errored",
			zap.String("session_id", session.ID.String()),
			zap.String("slot_id", slot.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: session %s exists but slot %s confirm errored: %v",
			ErrInconsistency, session.ID, slot.ID, err)
	}
	if confirmed == nil {
		s.logger.Error("Session created but slot confirmation matched no row",
			zap.String("session_id", session.ID.String()),
			zap.String("slot_id", slot.ID.String()),
		)
		return nil, fmt.Errorf("%w: session %s exists but slot %s was not confirmed",
			ErrInconsistency, session.ID, slot.ID)
	}

	s.logger.Info("Booking completed",
		zap.String("session_id", session.ID.String()),
		zap.String("slot_id", slot.ID.String()),
		zap.String("student_id", req.StudentID.String()),
		zap.String("modality", string(slot.Modality)),
		zap.Int("price_cents", price),
	)

	if err := s.publisher.BookingCompleted(ctx, session, confirmed); err != nil {
		s.logger.Warn("Failed to publish booking completion",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
	}

	return session, nil
}

func (s *BookingService) validateParticipants(slot *model.Slot, req BookingRequest) error {
	if req.ParticipantCount < 1 {
		return newValidationError("participant count must be at least 1")
	}
	if req.ParticipantCount > slot.MaxParticipants {
		return newValidationError("participant count %d exceeds slot capacity %d",
			req.ParticipantCount, slot.MaxParticipants)
	}
	if len(req.ParticipantEmails) != req.ParticipantCount {
		return newValidationError("expected %d participant emails, got %d",
			req.ParticipantCount, len(req.ParticipantEmails))
	}

	for _, email := range req.ParticipantEmails {
		if err := s.validate.Var(email, "required,email"); err != nil {
			return newValidationError("invalid participant email %q", email)
		}
		if !strings.HasSuffix(strings.ToLower(email), "@"+s.emailDomain) {
			return newValidationError("email %q is not from the institutional domain %s",
				email, s.emailDomain)
		}
	}

	return nil
}
