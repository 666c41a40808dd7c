package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mentorias-app/slots-service/internal/model"
	"github.com/mentorias-app/slots-service/internal/payment"
)

// memSlotStore is an in-memory SlotStore whose transitions mirror the SQL
// predicates: each conditional update is applied atomically under one lock.
type memSlotStore struct {
	mu      sync.Mutex
	slots   map[uuid.UUID]*model.Slot
	mentors map[uuid.UUID]string
	failAll error
}

func newMemSlotStore() *memSlotStore {
	return &memSlotStore{
		slots:   make(map[uuid.UUID]*model.Slot),
		mentors: make(map[uuid.UUID]string),
	}
}

func (s *memSlotStore) add(slot *model.Slot) *model.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.MaxParticipants == 0 {
		slot.MaxParticipants = 1
	}
	s.slots[slot.ID] = slot
	return slot
}

func copySlot(slot *model.Slot) *model.Slot {
	clone := *slot
	if slot.HeldBy != nil {
		held := *slot.HeldBy
		clone.HeldBy = &held
	}
	if slot.HoldExpiresAt != nil {
		expiry := *slot.HoldExpiresAt
		clone.HoldExpiresAt = &expiry
	}
	return &clone
}

func (s *memSlotStore) ReplaceDay(ctx context.Context, mentorID uuid.UUID, date time.Time, seeds []model.SlotSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return s.failAll
	}

	now := time.Now()
	for id, slot := range s.slots {
		if slot.MentorID == mentorID && slot.Date.Equal(date) && slot.Origin == model.OriginManual && freeForDelete(slot, now) {
			delete(s.slots, id)
		}
	}
	for _, seed := range seeds {
		// Any row still holding the key survived the delete and must not be
		// overwritten.
		for _, existing := range s.slots {
			if existing.MentorID == mentorID && existing.Date.Equal(date) && existing.StartMin == seed.StartMin {
				return fmt.Errorf("slot at %d collides with a booked, held or recurring slot", seed.StartMin)
			}
		}
		slot := &model.Slot{
			ID:              uuid.New(),
			MentorID:        mentorID,
			Date:            date,
			StartMin:        seed.StartMin,
			DurationMin:     seed.DurationMin,
			Modality:        seed.Modality,
			Location:        seed.Location,
			MaxParticipants: seed.MaxParticipants,
			Origin:          model.OriginManual,
			Available:       true,
			CreatedAt:       time.Now(),
		}
		s.slots[slot.ID] = slot
	}
	return nil
}

// freeForDelete mirrors the store predicate: available, or a hold that has
// already lapsed.
func freeForDelete(slot *model.Slot, now time.Time) bool {
	return slot.Available || (slot.HoldExpiresAt != nil && !slot.HoldExpiresAt.After(now))
}

func (s *memSlotStore) ListConfigured(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Slot
	for _, slot := range s.slots {
		if slot.MentorID == mentorID && slot.Available && !slot.Date.Before(from) && slot.Date.Before(to) {
			out = append(out, copySlot(slot))
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *memSlotStore) ListGlobalAvailable(ctx context.Context, from, to time.Time) ([]*model.AvailableSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.AvailableSlot
	for _, slot := range s.slots {
		if slot.Available && !slot.Date.Before(from) && slot.Date.Before(to) {
			out = append(out, &model.AvailableSlot{
				Slot:       *copySlot(slot),
				MentorName: s.mentors[slot.MentorID],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartMin < out[j].StartMin
	})
	return out, nil
}

func (s *memSlotStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, nil
	}
	return copySlot(slot), nil
}

func (s *memSlotStore) GetByKey(ctx context.Context, mentorID uuid.UUID, date time.Time, startMin int) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range s.slots {
		if slot.MentorID == mentorID && slot.Date.Equal(date) && slot.StartMin == startMin {
			return copySlot(slot), nil
		}
	}
	return nil, nil
}

func (s *memSlotStore) ClearDay(ctx context.Context, mentorID uuid.UUID, date time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var removed int64
	for id, slot := range s.slots {
		if slot.MentorID == mentorID && slot.Date.Equal(date) && slot.Origin == model.OriginManual && freeForDelete(slot, now) {
			delete(s.slots, id)
			removed++
		}
	}
	return removed, nil
}

func (s *memSlotStore) Reserve(ctx context.Context, slotID, studentID uuid.UUID, expiresAt, now time.Time) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, nil
	}
	lapsed := slot.HoldExpiresAt != nil && !slot.HoldExpiresAt.After(now)
	if !slot.Available && !lapsed {
		return nil, nil
	}

	slot.Available = false
	slot.HeldBy = &studentID
	slot.HoldExpiresAt = &expiresAt
	return copySlot(slot), nil
}

func (s *memSlotStore) Confirm(ctx context.Context, slotID, studentID uuid.UUID, now time.Time) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, nil
	}
	if slot.Available || slot.HeldBy == nil || *slot.HeldBy != studentID ||
		slot.HoldExpiresAt == nil || !slot.HoldExpiresAt.After(now) {
		return nil, nil
	}

	slot.HoldExpiresAt = nil
	return copySlot(slot), nil
}

func (s *memSlotStore) Release(ctx context.Context, slotID, studentID uuid.UUID) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, nil
	}
	if slot.Available || slot.HeldBy == nil || *slot.HeldBy != studentID || slot.HoldExpiresAt == nil {
		return nil, nil
	}

	slot.Available = true
	slot.HeldBy = nil
	slot.HoldExpiresAt = nil
	return copySlot(slot), nil
}

func (s *memSlotStore) ExpireStale(ctx context.Context, now time.Time) ([]*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}

	var freed []*model.Slot
	for _, slot := range s.slots {
		if !slot.Available && slot.HoldExpiresAt != nil && !slot.HoldExpiresAt.After(now) {
			slot.Available = true
			slot.HeldBy = nil
			slot.HoldExpiresAt = nil
			freed = append(freed, copySlot(slot))
		}
	}
	return freed, nil
}

func sortSlots(slots []*model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartMin < slots[j].StartMin
	})
}

// memSessionStore enforces the unique slot_id constraint in memory.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Session // keyed by slot id
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[uuid.UUID]*model.Session)}
}

func (s *memSessionStore) Create(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.SlotID]; exists {
		return fmt.Errorf("duplicate session for slot %s", session.SlotID)
	}
	session.CreatedAt = time.Now()
	s.sessions[session.SlotID] = session
	return nil
}

func (s *memSessionStore) GetBySlotID(ctx context.Context, slotID uuid.UUID) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[slotID]
	if !ok {
		return nil, nil
	}
	return session, nil
}

func (s *memSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// recordingPublisher captures notification events.
type recordingPublisher struct {
	mu        sync.Mutex
	completed []uuid.UUID // session ids
	released  []uuid.UUID // slot ids
	fail      error
}

func (p *recordingPublisher) BookingCompleted(ctx context.Context, session *model.Session, slot *model.Slot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.completed = append(p.completed, session.ID)
	return nil
}

func (p *recordingPublisher) SlotReleased(ctx context.Context, slot *model.Slot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.released = append(p.released, slot.ID)
	return nil
}

func (p *recordingPublisher) releasedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.released)
}

// stubGateway returns a scripted payment outcome.
type stubGateway struct {
	mu      sync.Mutex
	result  payment.Result
	err     error
	charges int
}

func (g *stubGateway) Charge(ctx context.Context, amountCents int, payerEmail, description string) (payment.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges++
	if g.err != nil {
		return payment.Result{}, g.err
	}
	return g.result, nil
}

// memMentorStore is an in-memory MentorStore.
type memMentorStore struct {
	mu      sync.Mutex
	mentors map[uuid.UUID]*model.Mentor
	fail    error
}

func newMemMentorStore() *memMentorStore {
	return &memMentorStore{mentors: make(map[uuid.UUID]*model.Mentor)}
}

func (s *memMentorStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Mentor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	mentor, ok := s.mentors[id]
	if !ok {
		return nil, nil
	}
	clone := *mentor
	return &clone, nil
}

func (s *memMentorStore) Upsert(ctx context.Context, mentor *model.Mentor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	clone := *mentor
	if existing, ok := s.mentors[mentor.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else {
		clone.CreatedAt = time.Now()
	}
	s.mentors[mentor.ID] = &clone
	return nil
}
