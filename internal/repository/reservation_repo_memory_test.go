package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReservationRepository_CancelOnlyOnce(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Reservation{ID: "r-1", SlotID: "s-1", Pax: 2, Status: domain.ReservationStatusConfirmed, TotalPrice: 200}))

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Cancel(ctx, "r-1", domain.ReservationStatusConfirmed, 2, 200, 500); err == nil {
				winners.Add(1)
			} else {
				assert.ErrorIs(t, err, domain.ErrConflict)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	res, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, res.Status)
	require.NotNil(t, res.CancellationFee)
	assert.Equal(t, int64(500), *res.CancellationFee)
}

func TestMemoryReservationRepository_Conditions(t *testing.T) {
	repo := NewMemoryReservationRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Reservation{ID: "r-1", Pax: 2, Status: domain.ReservationStatusPending, TotalPrice: 200}))

	assert.ErrorIs(t, repo.Create(ctx, &domain.Reservation{ID: "r-1"}), domain.ErrConflict)

	_, err := repo.TransitionStatus(ctx, "missing", domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	_, err = repo.UpdatePax(ctx, "r-1", domain.ReservationStatusPending, 3, 4, 400)
	assert.ErrorIs(t, err, domain.ErrConflict)

	updated, err := repo.UpdatePax(ctx, "r-1", domain.ReservationStatusPending, 2, 4, 400)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Pax)
	assert.Equal(t, int64(400), updated.TotalPrice)

	confirmed, err := repo.TransitionStatus(ctx, "r-1", domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, confirmed.Status)

	_, err = repo.TransitionStatus(ctx, "r-1", domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = repo.Cancel(ctx, "r-1", domain.ReservationStatusConfirmed, 2, 200, 60)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = repo.Cancel(ctx, "r-1", domain.ReservationStatusConfirmed, 4, 200, 60)
	assert.ErrorIs(t, err, domain.ErrConflict)

	cancelled, err := repo.Cancel(ctx, "r-1", domain.ReservationStatusConfirmed, 4, 400, 120)
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancellationFee)
	assert.Equal(t, int64(120), *cancelled.CancellationFee)
}
