package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
)

// MemoryReservationRepository backs the memory inventory backend.
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]domain.Reservation
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{reservations: make(map[string]domain.Reservation)}
}

func (r *MemoryReservationRepository) Create(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reservations[res.ID]; exists {
		return domain.ErrConflict
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	r.reservations[res.ID] = *res
	return nil
}

func (r *MemoryReservationRepository) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &res, nil
}

func (r *MemoryReservationRepository) TransitionStatus(_ context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	return r.update(id, func(res *domain.Reservation) bool {
		if res.Status != from {
			return false
		}
		res.Status = to
		return true
	})
}

func (r *MemoryReservationRepository) Cancel(_ context.Context, id string, from domain.ReservationStatus, fromPax int, fromTotal, fee int64) (*domain.Reservation, error) {
	return r.update(id, func(res *domain.Reservation) bool {
		if res.Status != from || res.Pax != fromPax || res.TotalPrice != fromTotal {
			return false
		}
		res.Status = domain.ReservationStatusCancelled
		res.CancellationFee = &fee
		return true
	})
}

func (r *MemoryReservationRepository) UpdatePax(_ context.Context, id string, status domain.ReservationStatus, fromPax, toPax int, totalPrice int64) (*domain.Reservation, error) {
	return r.update(id, func(res *domain.Reservation) bool {
		if res.Status != status || res.Pax != fromPax {
			return false
		}
		res.Pax = toPax
		res.TotalPrice = totalPrice
		return true
	})
}

func (r *MemoryReservationRepository) update(id string, apply func(*domain.Reservation) bool) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if !apply(&res) {
		return nil, domain.ErrConflict
	}
	res.UpdatedAt = time.Now().UTC()
	r.reservations[id] = res
	return &res, nil
}

var _ ReservationRepository = (*MemoryReservationRepository)(nil)
