package slots

import (
	"context"
	"log"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/inventory"
)

type SlotUseCase interface {
	List(ctx context.Context) ([]domain.Slot, error)
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	Availability(ctx context.Context, id string) (int, error)
	SetStatus(ctx context.Context, id string, status domain.SlotStatus) (*domain.Slot, error)
}

type SlotCache interface {
	GetSlots(ctx context.Context) ([]domain.Slot, error)
	SetSlots(ctx context.Context, slots []domain.Slot) error
	InvalidateSlots(ctx context.Context) error
}

type SlotService struct {
	store inventory.Store
	cache SlotCache
}

// NewSlotService accepts a nil cache; List then always reads the store.
func NewSlotService(store inventory.Store, cache SlotCache) *SlotService {
	return &SlotService{store: store, cache: cache}
}

func (s *SlotService) List(ctx context.Context) ([]domain.Slot, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSlots(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	slots, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSlots(ctx, slots)
	}
	return slots, nil
}

func (s *SlotService) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	return s.store.GetByID(ctx, id)
}

// Availability always reads the ledger, never the cache.
func (s *SlotService) Availability(ctx context.Context, id string) (int, error) {
	return s.store.AvailableSeats(ctx, id)
}

func (s *SlotService) SetStatus(ctx context.Context, id string, status domain.SlotStatus) (*domain.Slot, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidSlotStatus
	}
	slot, err := s.store.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSlots(ctx); err != nil {
			log.Printf("WARN: invalidate slots cache: %v", err)
		}
	}
	return slot, nil
}

var _ SlotUseCase = (*SlotService)(nil)
