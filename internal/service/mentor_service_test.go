package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUpsertProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then updates", func(t *testing.T) {
		store := newMemMentorStore()
		svc := service.NewMentorService(store, zap.NewNop())
		mentorID := uuid.New()

		mentor, err := svc.UpsertProfile(ctx, mentorID, "  Laura G.  ", nil)
		require.NoError(t, err)
		assert.Equal(t, "Laura G.", mentor.DisplayName)

		avatar := "https://cdn/laura.png"
		mentor, err = svc.UpsertProfile(ctx, mentorID, "Laura García", &avatar)
		require.NoError(t, err)

		stored, err := svc.GetProfile(ctx, mentorID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "Laura García", stored.DisplayName)
		require.NotNil(t, stored.AvatarURL)
		assert.Equal(t, avatar, *stored.AvatarURL)
	})

	t.Run("blank display name is rejected", func(t *testing.T) {
		store := newMemMentorStore()
		svc := service.NewMentorService(store, zap.NewNop())

		_, err := svc.UpsertProfile(ctx, uuid.New(), "   ", nil)
		var vErr *service.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		store := newMemMentorStore()
		store.fail = errors.New("connection reset")
		svc := service.NewMentorService(store, zap.NewNop())

		_, err := svc.UpsertProfile(ctx, uuid.New(), "Laura G.", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upsert mentor profile")
	})
}

func TestGetProfileUnknownMentor(t *testing.T) {
	svc := service.NewMentorService(newMemMentorStore(), zap.NewNop())

	mentor, err := svc.GetProfile(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, mentor)
}
