package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, max_pax, current_pax, status, departs_at, price_per_pax, version, created_at, updated_at`

// PGSlotRepository keeps the capacity ledger in Postgres. Every mutation is a
// compare-and-swap on the row version, so a Reserve that read stale capacity
// or a stale status cannot commit; it reports domain.ErrConflict instead.
type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) *PGSlotRepository {
	return &PGSlotRepository{db: db}
}

func (r *PGSlotRepository) List(ctx context.Context) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+` FROM slots ORDER BY departs_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *PGSlotRepository) GetByID(ctx context.Context, slotID string) (*domain.Slot, error) {
	s, err := scanSlot(r.db.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id=$1`, slotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &s, nil
}

// Create inserts a slot unless one with the same id exists.
func (r *PGSlotRepository) Create(ctx context.Context, slot domain.Slot) error {
	if slot.Status == "" {
		slot.Status = domain.SlotStatusOpen
	}
	_, err := r.db.Exec(ctx, `INSERT INTO slots (id, max_pax, current_pax, status, departs_at, price_per_pax)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		slot.ID, slot.MaxPax, slot.CurrentPax, slot.Status, slot.DepartsAt, slot.PricePerPax)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (r *PGSlotRepository) SetStatus(ctx context.Context, slotID string, status domain.SlotStatus) (*domain.Slot, error) {
	s, err := scanSlot(r.db.QueryRow(ctx, `UPDATE slots SET status=$1, version=version+1, updated_at=now()
		WHERE id=$2 RETURNING `+slotColumns, status, slotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("set slot status: %w", err)
	}
	return &s, nil
}

func (r *PGSlotRepository) Reserve(ctx context.Context, slotID string, pax int) (int, error) {
	if pax < 1 {
		return 0, domain.ErrInvalidPax
	}
	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return 0, err
	}
	if slot.Status != domain.SlotStatusOpen {
		return slot.CurrentPax, &domain.SlotNotOpenError{SlotID: slotID, Status: slot.Status}
	}
	if slot.CurrentPax+pax > slot.MaxPax {
		return slot.CurrentPax, &domain.CapacityError{SlotID: slotID, Requested: pax, Remaining: slot.Remaining()}
	}
	return r.swapPax(ctx, slot, slot.CurrentPax+pax)
}

func (r *PGSlotRepository) Release(ctx context.Context, slotID string, pax int) (int, error) {
	if pax < 1 {
		return 0, domain.ErrInvalidPax
	}
	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return 0, err
	}

	var overErr error
	if pax > slot.CurrentPax {
		overErr = &domain.OverReleaseError{SlotID: slotID, Requested: pax, Held: slot.CurrentPax}
		pax = slot.CurrentPax
	}
	n, err := r.swapPax(ctx, slot, slot.CurrentPax-pax)
	if err != nil {
		return n, err
	}
	return n, overErr
}

func (r *PGSlotRepository) AvailableSeats(ctx context.Context, slotID string) (int, error) {
	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return 0, err
	}
	return slot.Remaining(), nil
}

// swapPax writes newPax only if nobody touched the row since slot was read.
func (r *PGSlotRepository) swapPax(ctx context.Context, slot *domain.Slot, newPax int) (int, error) {
	tag, err := r.db.Exec(ctx, `UPDATE slots SET current_pax=$1, version=version+1, updated_at=now()
		WHERE id=$2 AND version=$3`, newPax, slot.ID, slot.Version)
	if err != nil {
		return slot.CurrentPax, fmt.Errorf("update slot pax: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return slot.CurrentPax, domain.ErrConflict
	}
	return newPax, nil
}

func scanSlot(row pgx.Row) (domain.Slot, error) {
	var s domain.Slot
	err := row.Scan(&s.ID, &s.MaxPax, &s.CurrentPax, &s.Status, &s.DepartsAt, &s.PricePerPax, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

var _ inventory.Store = (*PGSlotRepository)(nil)
