package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, slot_id, pax, status, total_price, reservation_date, cancellation_fee, email, created_at, updated_at`

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) *PGReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (id, slot_id, pax, status, total_price, reservation_date, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		res.ID, res.SlotID, res.Pax, res.Status, res.TotalPrice, res.ReservationDate, res.Email).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

func (r *PGReservationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, updated_at=now()
		WHERE id=$2 AND status=$3 RETURNING `+reservationColumns, to, id, from)
	return r.conditional(ctx, id, row)
}

func (r *PGReservationRepository) Cancel(ctx context.Context, id string, from domain.ReservationStatus, fromPax int, fromTotal, fee int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, cancellation_fee=$2, updated_at=now()
		WHERE id=$3 AND status=$4 AND pax=$5 AND total_price=$6 RETURNING `+reservationColumns,
		domain.ReservationStatusCancelled, fee, id, from, fromPax, fromTotal)
	return r.conditional(ctx, id, row)
}

func (r *PGReservationRepository) UpdatePax(ctx context.Context, id string, status domain.ReservationStatus, fromPax, toPax int, totalPrice int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET pax=$1, total_price=$2, updated_at=now()
		WHERE id=$3 AND status=$4 AND pax=$5 RETURNING `+reservationColumns, toPax, totalPrice, id, status, fromPax)
	return r.conditional(ctx, id, row)
}

// conditional tells a missing reservation apart from one that moved on.
func (r *PGReservationRepository) conditional(ctx context.Context, id string, row pgx.Row) (*domain.Reservation, error) {
	res, err := scanReservation(row)
	if err == nil {
		return &res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isInvalidUUID(err) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrConflict
}

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.SlotID, &res.Pax, &res.Status, &res.TotalPrice, &res.ReservationDate,
		&res.CancellationFee, &res.Email, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
