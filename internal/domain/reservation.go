package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// Holding reports whether seats are still counted against the slot.
func (s ReservationStatus) Holding() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// Reservation holds Pax seats on SlotID while its status is pending or
// confirmed. ReservationDate is the slot's departure.
type Reservation struct {
	ID              string            `json:"id"`
	SlotID          string            `json:"slot_id"`
	Pax             int               `json:"pax"`
	Status          ReservationStatus `json:"status"`
	TotalPrice      int64             `json:"total_price"`
	ReservationDate time.Time         `json:"reservation_date"`
	CancellationFee *int64            `json:"cancellation_fee,omitempty"`
	Email           string            `json:"email"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
