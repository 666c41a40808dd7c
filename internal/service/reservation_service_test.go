package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func availableSlot(store *memSlotStore) *model.Slot {
	return store.add(&model.Slot{
		MentorID:    uuid.New(),
		Date:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartMin:    14 * 60,
		DurationMin: 60,
		Modality:    model.ModalityVirtual,
		Origin:      model.OriginManual,
		Available:   true,
	})
}

func newReservationService(store *memSlotStore, publisher *recordingPublisher) *service.ReservationService {
	return service.NewReservationService(store, publisher, zap.NewNop())
}

func TestReserve(t *testing.T) {
	t.Run("sets holder and expiry", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})
		student := uuid.New()

		held, err := svc.Reserve(context.Background(), slot.ID, student)
		require.NoError(t, err)
		assert.False(t, held.Available)
		require.NotNil(t, held.HeldBy)
		assert.Equal(t, student, *held.HeldBy)
		require.NotNil(t, held.HoldExpiresAt)
		assert.WithinDuration(t, time.Now().Add(service.HoldTTL), *held.HoldExpiresAt, 5*time.Second)
	})

	t.Run("second reserve loses the race", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})

		_, err := svc.Reserve(context.Background(), slot.ID, uuid.New())
		require.NoError(t, err)

		_, err = svc.Reserve(context.Background(), slot.ID, uuid.New())
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("exactly one concurrent reserve wins", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})

		const racers = 16
		var wg sync.WaitGroup
		results := make(chan error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Reserve(context.Background(), slot.ID, uuid.New())
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var wins, conflicts int
		for err := range results {
			switch {
			case err == nil:
				wins++
			default:
				require.ErrorIs(t, err, service.ErrConflict)
				conflicts++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, racers-1, conflicts)
	})

	t.Run("lapsed hold is reservable before any sweep", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})

		// A hold from a first student whose expiry already passed, with no
		// sweep having run.
		firstHolder := uuid.New()
		expired := time.Now().Add(-time.Minute)
		slot.Available = false
		slot.HeldBy = &firstHolder
		slot.HoldExpiresAt = &expired

		newHolder := uuid.New()
		held, err := svc.Reserve(context.Background(), slot.ID, newHolder)
		require.NoError(t, err)
		require.NotNil(t, held.HeldBy)
		assert.Equal(t, newHolder, *held.HeldBy)
	})

	t.Run("unknown slot is not found", func(t *testing.T) {
		svc := newReservationService(newMemSlotStore(), &recordingPublisher{})

		_, err := svc.Reserve(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, service.ErrSlotNotFound)

		_, err = svc.Confirm(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, service.ErrSlotNotFound)

		_, err = svc.Cancel(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, service.ErrSlotNotFound)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("non-holder cannot confirm", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})

		_, err := svc.Reserve(context.Background(), slot.ID, uuid.New())
		require.NoError(t, err)

		_, err = svc.Confirm(context.Background(), slot.ID, uuid.New())
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("holder confirms and the slot stays taken", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})
		student := uuid.New()

		_, err := svc.Reserve(context.Background(), slot.ID, student)
		require.NoError(t, err)

		confirmed, err := svc.Confirm(context.Background(), slot.ID, student)
		require.NoError(t, err)
		assert.True(t, confirmed.IsConfirmed())
		assert.Nil(t, confirmed.HoldExpiresAt)
		require.NotNil(t, confirmed.HeldBy)
		assert.Equal(t, student, *confirmed.HeldBy)

		// A confirmed slot has no expiry, so no reserve can ever match.
		_, err = svc.Reserve(context.Background(), slot.ID, uuid.New())
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("confirming twice conflicts", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})
		student := uuid.New()

		_, err := svc.Reserve(context.Background(), slot.ID, student)
		require.NoError(t, err)
		_, err = svc.Confirm(context.Background(), slot.ID, student)
		require.NoError(t, err)

		_, err = svc.Confirm(context.Background(), slot.ID, student)
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestCancel(t *testing.T) {
	t.Run("holder cancel restores availability", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		publisher := &recordingPublisher{}
		svc := newReservationService(store, publisher)
		student := uuid.New()

		_, err := svc.Reserve(context.Background(), slot.ID, student)
		require.NoError(t, err)

		released, err := svc.Cancel(context.Background(), slot.ID, student)
		require.NoError(t, err)
		assert.True(t, released.Available)
		assert.Nil(t, released.HeldBy)
		assert.Nil(t, released.HoldExpiresAt)
		assert.Equal(t, 1, publisher.releasedCount())

		// The cycle repeats: the slot is reservable again.
		_, err = svc.Reserve(context.Background(), slot.ID, uuid.New())
		assert.NoError(t, err)
	})

	t.Run("confirmed slot cannot be cancelled", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})
		student := uuid.New()

		_, err := svc.Reserve(context.Background(), slot.ID, student)
		require.NoError(t, err)
		_, err = svc.Confirm(context.Background(), slot.ID, student)
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), slot.ID, student)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("non-holder cannot cancel", func(t *testing.T) {
		store := newMemSlotStore()
		slot := availableSlot(store)
		svc := newReservationService(store, &recordingPublisher{})

		_, err := svc.Reserve(context.Background(), slot.ID, uuid.New())
		require.NoError(t, err)

		_, err = svc.Cancel(context.Background(), slot.ID, uuid.New())
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}

func TestExpireStale(t *testing.T) {
	store := newMemSlotStore()
	publisher := &recordingPublisher{}
	svc := newReservationService(store, publisher)

	holder := uuid.New()
	lapsed := time.Now().Add(-time.Minute)
	active := time.Now().Add(3 * time.Minute)

	store.add(&model.Slot{
		MentorID: uuid.New(), Date: time.Now(), StartMin: 540, DurationMin: 60,
		Modality: model.ModalityVirtual, Origin: model.OriginManual,
		Available: false, HeldBy: &holder, HoldExpiresAt: &lapsed,
	})
	store.add(&model.Slot{
		MentorID: uuid.New(), Date: time.Now(), StartMin: 600, DurationMin: 60,
		Modality: model.ModalityVirtual, Origin: model.OriginManual,
		Available: false, HeldBy: &holder, HoldExpiresAt: &active,
	})

	freed, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, freed)
	assert.Equal(t, 1, publisher.releasedCount())

	// Idempotent: the second run right after finds nothing left to free.
	freed, err = svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, freed)
	assert.Equal(t, 1, publisher.releasedCount())
}
