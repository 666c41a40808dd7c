package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/repository/base"
)

const slotColumns = `id, mentor_id, slot_date, start_min, duration_min, modality, location,
	max_participants, origin, available, held_by, hold_expires_at, created_at`

// SlotRepository is the sole owner of slot rows. Availability, holder and
// hold-expiry fields change only through the conditional transitions below;
// the WHERE predicates are the mutual exclusion between racing callers.
type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.MentorID,
		&slot.Date,
		&slot.StartMin,
		&slot.DurationMin,
		&slot.Modality,
		&slot.Location,
		&slot.MaxParticipants,
		&slot.Origin,
		&slot.Available,
		&slot.HeldBy,
		&slot.HoldExpiresAt,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReplaceDay removes the mentor's free manual slots for the date and inserts
// the seeds in a single transaction. Booked slots, actively held slots and
// recurring slots are never deleted: booked rows are referenced by their
// session, and a seed landing on any surviving key is a collision, not an
// overwrite.
func (r *SlotRepository) ReplaceDay(ctx context.Context, mentorID uuid.UUID, date time.Time, seeds []model.SlotSeed) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `
		DELETE FROM slots
		WHERE mentor_id = $1 AND slot_date = $2 AND origin = 'manual'
		  AND (available = TRUE OR (hold_expires_at IS NOT NULL AND hold_expires_at <= now()))
	`
	if _, err := tx.Exec(ctx, deleteQuery, mentorID, date); err != nil {
		return fmt.Errorf("clear manual slots: %w", err)
	}

	// Every row left at a seed's key after the delete is one the upsert must
	// not touch, so a conflict here means the window is taken.
	insertQuery := `
		INSERT INTO slots (mentor_id, slot_date, start_min, duration_min, modality, location, max_participants, origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'manual')
		ON CONFLICT (mentor_id, slot_date, start_min) DO NOTHING
	`
	for _, seed := range seeds {
		tag, err := tx.Exec(ctx, insertQuery,
			mentorID,
			date,
			seed.StartMin,
			seed.DurationMin,
			seed.Modality,
			seed.Location,
			seed.MaxParticipants,
		)
		if err != nil {
			return fmt.Errorf("insert slot at %d: %w", seed.StartMin, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("slot at %d collides with a booked, held or recurring slot", seed.StartMin)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListConfigured returns the mentor's available slots in the range.
func (r *SlotRepository) ListConfigured(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE mentor_id = $1
		  AND slot_date >= $2
		  AND slot_date < $3
		  AND available = TRUE
		ORDER BY slot_date, start_min
	`

	rows, err := r.Query(ctx, query, mentorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list configured slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// ListGlobalAvailable returns all currently available slots across mentors,
// joined with mentor display metadata.
func (r *SlotRepository) ListGlobalAvailable(ctx context.Context, from, to time.Time) ([]*model.AvailableSlot, error) {
	query := `
		SELECT s.id, s.mentor_id, s.slot_date, s.start_min, s.duration_min, s.modality, s.location,
		       s.max_participants, s.origin, s.available, s.held_by, s.hold_expires_at, s.created_at,
		       m.display_name, m.avatar_url
		FROM slots s
		JOIN mentors m ON m.id = s.mentor_id
		WHERE s.available = TRUE
		  AND s.slot_date >= $1
		  AND s.slot_date < $2
		ORDER BY s.slot_date, s.start_min
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list global available slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailableSlot
	for rows.Next() {
		var slot model.AvailableSlot
		err := rows.Scan(
			&slot.ID,
			&slot.MentorID,
			&slot.Date,
			&slot.StartMin,
			&slot.DurationMin,
			&slot.Modality,
			&slot.Location,
			&slot.MaxParticipants,
			&slot.Origin,
			&slot.Available,
			&slot.HeldBy,
			&slot.HoldExpiresAt,
			&slot.CreatedAt,
			&slot.MentorName,
			&slot.MentorAvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan available slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, rows.Err()
}

// GetByID fetches a slot by id; returns nil when it does not exist.
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetByKey fetches a slot by its (mentor, date, start time) key.
func (r *SlotRepository) GetByKey(ctx context.Context, mentorID uuid.UUID, date time.Time, startMin int) (*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE mentor_id = $1 AND slot_date = $2 AND start_min = $3
	`

	slot, err := scanSlot(r.QueryRow(ctx, query, mentorID, date, startMin))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by key: %w", err)
	}

	return slot, nil
}

// ClearDay removes only free manual-origin slots for the date. Recurring
// slots, confirmed bookings and active holds survive; booked rows stay
// referenced by their session.
func (r *SlotRepository) ClearDay(ctx context.Context, mentorID uuid.UUID, date time.Time) (int64, error) {
	query := `
		DELETE FROM slots
		WHERE mentor_id = $1 AND slot_date = $2 AND origin = 'manual'
		  AND (available = TRUE OR (hold_expires_at IS NOT NULL AND hold_expires_at <= now()))
	`

	affected, err := r.ExecAffected(ctx, query, mentorID, date)
	if err != nil {
		return 0, fmt.Errorf("clear day: %w", err)
	}

	return affected, nil
}

// transition applies one conditional slot update and returns the updated row,
// or nil when the predicate did not match (lost race). Every state change of
// availability/holder/expiry funnels through here.
func (r *SlotRepository) transition(ctx context.Context, query string, args ...any) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return slot, nil
}

// Reserve places a hold on an available slot. A hold whose expiry has passed
// counts as available, so lapsed holds are reservable before any sweep runs.
func (r *SlotRepository) Reserve(ctx context.Context, slotID, studentID uuid.UUID, expiresAt, now time.Time) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET available = FALSE, held_by = $2, hold_expires_at = $3
		WHERE id = $1
		  AND (available = TRUE OR (hold_expires_at IS NOT NULL AND hold_expires_at <= $4))
		RETURNING ` + slotColumns

	slot, err := r.transition(ctx, query, slotID, studentID, expiresAt, now)
	if err != nil {
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	return slot, nil
}

// Confirm promotes an unexpired hold owned by studentID to a permanent
// booking.
func (r *SlotRepository) Confirm(ctx context.Context, slotID, studentID uuid.UUID, now time.Time) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET hold_expires_at = NULL
		WHERE id = $1
		  AND available = FALSE
		  AND held_by = $2
		  AND hold_expires_at IS NOT NULL
		  AND hold_expires_at > $3
		RETURNING ` + slotColumns

	slot, err := r.transition(ctx, query, slotID, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("confirm slot: %w", err)
	}

	return slot, nil
}

// Release returns a held slot to available. Confirmed slots never match the
// predicate, so a booking cannot be undone through this path.
func (r *SlotRepository) Release(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET available = TRUE, held_by = NULL, hold_expires_at = NULL
		WHERE id = $1
		  AND available = FALSE
		  AND held_by = $2
		  AND hold_expires_at IS NOT NULL
		RETURNING ` + slotColumns

	slot, err := r.transition(ctx, query, slotID, studentID)
	if err != nil {
		return nil, fmt.Errorf("release slot: %w", err)
	}

	return slot, nil
}

// ExpireStale bulk-resets every lapsed hold and returns the freed slots.
// Idempotent: a second run right after the first matches zero rows.
func (r *SlotRepository) ExpireStale(ctx context.Context, now time.Time) ([]*model.Slot, error) {
	query := `
		UPDATE slots
		SET available = TRUE, held_by = NULL, hold_expires_at = NULL
		WHERE available = FALSE
		  AND hold_expires_at IS NOT NULL
		  AND hold_expires_at <= $1
		RETURNING ` + slotColumns

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("expire stale holds: %w", err)
	}
	defer rows.Close()

	var freed []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan freed slot: %w", err)
		}
		freed = append(freed, slot)
	}

	return freed, rows.Err()
}
