package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/repository/base"
)

// MentorRepository reads the mentor display metadata mirrored from the
// identity layer.
type MentorRepository struct {
	*base.Repository
}

func NewMentorRepository(pool *pgxpool.Pool) *MentorRepository {
	return &MentorRepository{Repository: base.NewRepository(pool)}
}

// GetByID fetches a mentor; returns nil when unknown.
func (r *MentorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Mentor, error) {
	query := `
		SELECT id, display_name, avatar_url, created_at
		FROM mentors
		WHERE id = $1
	`

	var mentor model.Mentor
	err := r.QueryRow(ctx, query, id).Scan(
		&mentor.ID,
		&mentor.DisplayName,
		&mentor.AvatarURL,
		&mentor.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mentor by id: %w", err)
	}

	return &mentor, nil
}

// Upsert mirrors a mentor's display metadata.
func (r *MentorRepository) Upsert(ctx context.Context, mentor *model.Mentor) error {
	query := `
		INSERT INTO mentors (id, display_name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url
	`

	if _, err := r.ExecAffected(ctx, query, mentor.ID, mentor.DisplayName, mentor.AvatarURL); err != nil {
		return fmt.Errorf("upsert mentor: %w", err)
	}

	return nil
}
