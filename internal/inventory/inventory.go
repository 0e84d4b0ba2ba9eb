// Package inventory owns the capacity ledger: the per-slot count of committed
// seats and the guarantee that it stays within [0, MaxPax].
package inventory

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
)

// SlotInventory is the only mutator of a slot's CurrentPax.
//
// Reserve commits pax seats only if the slot is open and has room, as one
// atomic step per slot. Failures unwrap to domain.ErrSlotNotFound,
// domain.ErrSlotNotOpen, domain.ErrInsufficientCapacity (*domain.CapacityError
// carries the remaining seats) or domain.ErrConflict when a concurrent writer
// won the race and the caller should retry.
//
// Release gives seats back, clamping at zero. Over-release returns the
// clamped count together with a *domain.OverReleaseError.
//
// AvailableSeats is a snapshot and guarantees nothing about a later Reserve.
type SlotInventory interface {
	Reserve(ctx context.Context, slotID string, pax int) (int, error)
	Release(ctx context.Context, slotID string, pax int) (int, error)
	AvailableSeats(ctx context.Context, slotID string) (int, error)
}

// Catalog is the read side of slots plus the admin status switch.
type Catalog interface {
	List(ctx context.Context) ([]domain.Slot, error)
	GetByID(ctx context.Context, slotID string) (*domain.Slot, error)
	SetStatus(ctx context.Context, slotID string, status domain.SlotStatus) (*domain.Slot, error)
}

// Store is implemented by every slot backend.
type Store interface {
	SlotInventory
	Catalog
}
