package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openmeadow/eventreg/internal/model"
)

// memStore is an in-memory EventStore + RegistrationStore honoring the
// same serialization contract as the SQL implementation: a per-event
// mutex stands in for the event row lock, and a snapshot taken at
// transaction start stands in for rollback.
type memStore struct {
	mu     sync.Mutex
	events map[uint64]*model.Event
	regs   map[uint64]*model.Registration
	nextID uint64
	locks  map[uint64]*sync.Mutex
}

func newMemStore(events ...*model.Event) *memStore {
	s := &memStore{
		events: make(map[uint64]*model.Event),
		regs:   make(map[uint64]*model.Registration),
		locks:  make(map[uint64]*sync.Mutex),
	}
	for _, ev := range events {
		s.events[ev.ID] = ev
		s.locks[ev.ID] = &sync.Mutex{}
	}
	return s
}

func (s *memStore) GetEvent(ctx context.Context, tenantID, eventID uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok || ev.TenantID != tenantID {
		return nil, ErrStoreNotFound
	}
	cp := *ev
	return &cp, nil
}

func (s *memStore) InOccurrenceTx(ctx context.Context, tenantID, eventID uint64, fn func(OccurrenceTx) error) error {
	s.mu.Lock()
	ev, ok := s.events[eventID]
	if !ok || ev.TenantID != tenantID {
		s.mu.Unlock()
		return ErrStoreNotFound
	}
	lock := s.locks[eventID]
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// Snapshot this event's rows only; like autoincrement in SQL, ids
	// consumed by a rolled-back insert are not reused.
	s.mu.Lock()
	snapshot := make(map[uint64]*model.Registration)
	for id, reg := range s.regs {
		if reg.EventID == eventID {
			cp := *reg
			snapshot[id] = &cp
		}
	}
	s.mu.Unlock()

	err := fn(&memTx{store: s, tenantID: tenantID, eventID: eventID})
	if err != nil {
		s.mu.Lock()
		for id, reg := range s.regs {
			if reg.EventID == eventID {
				delete(s.regs, id)
			}
		}
		for id, reg := range snapshot {
			s.regs[id] = reg
		}
		s.mu.Unlock()
	}
	return err
}

func (s *memStore) GetRegistration(ctx context.Context, tenantID, id uint64) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.regs[id]
	if !ok || reg.TenantID != tenantID {
		return nil, ErrStoreNotFound
	}
	cp := *reg
	return &cp, nil
}

func (s *memStore) GetByAccessToken(ctx context.Context, tenantID uint64, token string) (*model.Registration, *model.EventSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.regs {
		if reg.TenantID == tenantID && reg.AccessToken == token {
			cp := *reg
			ev, ok := s.events[reg.EventID]
			if !ok {
				return nil, nil, fmt.Errorf("registration %d references missing event %d", reg.ID, reg.EventID)
			}
			sum := ev.Summary()
			return &cp, &sum, nil
		}
	}
	return nil, nil, ErrStoreNotFound
}

func (s *memStore) CountByOccurrence(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.OccurrenceCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(tenantID, eventID, occurrence), nil
}

func (s *memStore) StatsByOccurrence(ctx context.Context, tenantID, eventID uint64, occurrence *time.Time) (model.RegistrationStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st model.RegistrationStats
	for _, reg := range s.regs {
		if reg.TenantID != tenantID || reg.EventID != eventID || !sameOccurrence(reg.OccurrenceDate, occurrence) {
			continue
		}
		switch reg.Status {
		case model.StatusRegistered:
			st.Registered++
		case model.StatusWaitlisted:
			st.Waitlisted++
		case model.StatusCheckedIn:
			st.CheckedIn++
		case model.StatusCancelled:
			st.Cancelled++
		case model.StatusNoShow:
			st.NoShow++
		}
		if reg.Status.HoldsSlot() {
			st.TotalAttendees += 1 + reg.AdditionalAttendees
		}
	}
	return st, nil
}

func (s *memStore) countLocked(tenantID, eventID uint64, occurrence *time.Time) model.OccurrenceCounts {
	var c model.OccurrenceCounts
	for _, reg := range s.regs {
		if reg.TenantID != tenantID || reg.EventID != eventID || !sameOccurrence(reg.OccurrenceDate, occurrence) {
			continue
		}
		switch {
		case reg.Status.HoldsSlot():
			c.Registered++
		case reg.Status == model.StatusWaitlisted:
			c.Waitlisted++
		}
	}
	return c
}

type memTx struct {
	store    *memStore
	tenantID uint64
	eventID  uint64
}

func (t *memTx) Counts(occurrence *time.Time) (model.OccurrenceCounts, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.countLocked(t.tenantID, t.eventID, occurrence), nil
}

func (t *memTx) ActiveEmailExists(occurrence *time.Time, email string) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, reg := range t.store.regs {
		if reg.TenantID == t.tenantID && reg.EventID == t.eventID &&
			sameOccurrence(reg.OccurrenceDate, occurrence) &&
			reg.Email == email && reg.Status != model.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) Insert(reg *model.Registration) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.nextID++
	reg.ID = t.store.nextID
	reg.CreatedAt = time.Now().UTC()
	reg.UpdatedAt = reg.CreatedAt
	cp := *reg
	t.store.regs[reg.ID] = &cp
	return nil
}

func (t *memTx) Get(id uint64) (*model.Registration, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	reg, ok := t.store.regs[id]
	if !ok || reg.TenantID != t.tenantID || reg.EventID != t.eventID {
		return nil, ErrStoreNotFound
	}
	cp := *reg
	return &cp, nil
}

func (t *memTx) Update(reg *model.Registration) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.store.regs[reg.ID]; !ok {
		return ErrStoreNotFound
	}
	reg.UpdatedAt = time.Now().UTC()
	cp := *reg
	t.store.regs[reg.ID] = &cp
	return nil
}

func (t *memTx) LowestWaitlisted(occurrence *time.Time) (*model.Registration, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var best *model.Registration
	for _, reg := range t.store.regs {
		if reg.TenantID != t.tenantID || reg.EventID != t.eventID ||
			!sameOccurrence(reg.OccurrenceDate, occurrence) ||
			reg.Status != model.StatusWaitlisted || reg.WaitlistPosition == nil {
			continue
		}
		if best == nil || *reg.WaitlistPosition < *best.WaitlistPosition {
			best = reg
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (t *memTx) ShiftWaitlistDown(occurrence *time.Time, above int) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, reg := range t.store.regs {
		if reg.TenantID != t.tenantID || reg.EventID != t.eventID ||
			!sameOccurrence(reg.OccurrenceDate, occurrence) ||
			reg.Status != model.StatusWaitlisted || reg.WaitlistPosition == nil {
			continue
		}
		if *reg.WaitlistPosition > above {
			pos := *reg.WaitlistPosition - 1
			reg.WaitlistPosition = &pos
		}
	}
	return nil
}

func sameOccurrence(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
