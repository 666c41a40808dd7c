package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/repository/base"
)

// SessionRepository owns session rows. The unique constraint on slot_id is
// the storage-level guard against a second session for the same slot.
type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a session row.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, slot_id, mentor_id, student_id, subject_id, starts_at, duration_min,
			modality, price_cents, participant_count, participant_emails, note, payment_status, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		session.ID,
		session.SlotID,
		session.MentorID,
		session.StudentID,
		session.SubjectID,
		session.StartsAt,
		session.DurationMin,
		session.Modality,
		session.PriceCents,
		session.ParticipantCount,
		session.ParticipantEmails,
		session.Note,
		session.PaymentStatus,
		session.PaymentReference,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetBySlotID fetches the session created for a slot; returns nil when the
// slot has no session.
func (r *SessionRepository) GetBySlotID(ctx context.Context, slotID uuid.UUID) (*model.Session, error) {
	query := `
		SELECT id, slot_id, mentor_id, student_id, subject_id, starts_at, duration_min,
		       modality, price_cents, participant_count, participant_emails, note,
		       payment_status, payment_reference, created_at
		FROM sessions
		WHERE slot_id = $1
	`

	var session model.Session
	err := r.QueryRow(ctx, query, slotID).Scan(
		&session.ID,
		&session.SlotID,
		&session.MentorID,
		&session.StudentID,
		&session.SubjectID,
		&session.StartsAt,
		&session.DurationMin,
		&session.Modality,
		&session.PriceCents,
		&session.ParticipantCount,
		&session.ParticipantEmails,
		&session.Note,
		&session.PaymentStatus,
		&session.PaymentReference,
		&session.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by slot: %w", err)
	}

	return &session, nil
}
