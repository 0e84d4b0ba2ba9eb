package repository

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
)

// ReservationRepository persists reservations. The conditional updates are
// what make the coordinator's seat releases happen at most once: a transition
// only succeeds if the row is still in the expected state, otherwise it
// returns domain.ErrConflict. Cancel also requires the pax and total the fee
// was quoted from.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string, from domain.ReservationStatus, fromPax int, fromTotal, fee int64) (*domain.Reservation, error)
	UpdatePax(ctx context.Context, id string, status domain.ReservationStatus, fromPax, toPax int, totalPrice int64) (*domain.Reservation, error)
}
