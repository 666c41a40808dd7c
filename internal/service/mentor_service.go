package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"go.uber.org/zap"
)

// MentorService maintains the display metadata shown next to global
// availability listings.
type MentorService struct {
	mentors MentorStore
	logger  *zap.Logger
}

func NewMentorService(mentors MentorStore, logger *zap.Logger) *MentorService {
	return &MentorService{
		mentors: mentors,
		logger:  logger,
	}
}

// UpsertProfile mirrors a mentor's display name and avatar.
func (s *MentorService) UpsertProfile(ctx context.Context, mentorID uuid.UUID, displayName string, avatarURL *string) (*model.Mentor, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, newValidationError("display name is required")
	}

	mentor := &model.Mentor{
		ID:          mentorID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	}

	if err := s.mentors.Upsert(ctx, mentor); err != nil {
		return nil, fmt.Errorf("upsert mentor profile: %w", err)
	}

	s.logger.Info("Mentor profile updated",
		zap.String("mentor_id", mentorID.String()),
		zap.String("display_name", displayName),
	)

	return mentor, nil
}

// GetProfile returns a mentor's display metadata; nil when unknown.
func (s *MentorService) GetProfile(ctx context.Context, mentorID uuid.UUID) (*model.Mentor, error) {
	return s.mentors.GetByID(ctx, mentorID)
}
