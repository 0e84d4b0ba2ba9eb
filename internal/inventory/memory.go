package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

type slotEntry struct {
	mu   sync.Mutex
	slot domain.Slot
}

// Memory keeps slots in process. Each slot has its own mutex, so requests for
// different slots never wait on each other; the map lock only guards lookups.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]*slotEntry
}

func NewMemory(slots ...domain.Slot) *Memory {
	m := &Memory{slots: make(map[string]*slotEntry, len(slots))}
	for _, s := range slots {
		m.Put(s)
	}
	return m
}

// Put registers or replaces a slot. It is how the slot-generation process hands slots over.
func (m *Memory) Put(slot domain.Slot) {
	if slot.Status == "" {
		slot.Status = domain.SlotStatusOpen
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.slots[slot.ID]; ok {
		e.mu.Lock()
		slot.Version = e.slot.Version + 1
		e.slot = slot
		e.mu.Unlock()
		return
	}
	m.slots[slot.ID] = &slotEntry{slot: slot}
}

func (m *Memory) entry(slotID string) (*slotEntry, error) {
	m.mu.RLock()
	e, ok := m.slots[slotID]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSlotNotFound
	}
	return e, nil
}

func (m *Memory) Reserve(_ context.Context, slotID string, pax int) (int, error) {
	if pax < 1 {
		return 0, domain.ErrInvalidPax
	}
	e, err := m.entry(slotID)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.slot.Status != domain.SlotStatusOpen {
		return e.slot.CurrentPax, &domain.SlotNotOpenError{SlotID: slotID, Status: e.slot.Status}
	}
	if e.slot.CurrentPax+pax > e.slot.MaxPax {
		return e.slot.CurrentPax, &domain.CapacityError{SlotID: slotID, Requested: pax, Remaining: e.slot.Remaining()}
	}
	e.slot.CurrentPax += pax
	e.slot.Version++
	e.slot.UpdatedAt = time.Now().UTC()
	return e.slot.CurrentPax, nil
}

func (m *Memory) Release(_ context.Context, slotID string, pax int) (int, error) {
	if pax < 1 {
		return 0, domain.ErrInvalidPax
	}
	e, err := m.entry(slotID)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.slot.CurrentPax
	var overErr error
	if pax > held {
		overErr = &domain.OverReleaseError{SlotID: slotID, Requested: pax, Held: held}
		pax = held
	}
	e.slot.CurrentPax -= pax
	e.slot.Version++
	e.slot.UpdatedAt = time.Now().UTC()
	return e.slot.CurrentPax, overErr
}

func (m *Memory) AvailableSeats(_ context.Context, slotID string) (int, error) {
	e, err := m.entry(slotID)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slot.Remaining(), nil
}

func (m *Memory) List(_ context.Context) ([]domain.Slot, error) {
	m.mu.RLock()
	entries := make([]*slotEntry, 0, len(m.slots))
	for _, e := range m.slots {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	slots := make([]domain.Slot, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		slots = append(slots, e.slot)
		e.mu.Unlock()
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DepartsAt.Equal(slots[j].DepartsAt) {
			return slots[i].ID < slots[j].ID
		}
		return slots[i].DepartsAt.Before(slots[j].DepartsAt)
	})
	return slots, nil
}

func (m *Memory) GetByID(_ context.Context, slotID string) (*domain.Slot, error) {
	e, err := m.entry(slotID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.slot
	return &s, nil
}

func (m *Memory) SetStatus(_ context.Context, slotID string, status domain.SlotStatus) (*domain.Slot, error) {
	e, err := m.entry(slotID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slot.Status = status
	e.slot.Version++
	e.slot.UpdatedAt = time.Now().UTC()
	s := e.slot
	return &s, nil
}

var _ Store = (*Memory)(nil)
