package domain

import "time"

type SlotStatus string

const (
	SlotStatusOpen      SlotStatus = "open"
	SlotStatusClosed    SlotStatus = "closed"
	SlotStatusSuspended SlotStatus = "suspended"
)

func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusOpen, SlotStatusClosed, SlotStatusSuspended:
		return true
	}
	return false
}

// Slot is a bookable departure with a fixed passenger capacity.
type Slot struct {
	ID          string     `json:"id"`
	MaxPax      int        `json:"max_pax"`
	CurrentPax  int        `json:"current_pax"`
	Status      SlotStatus `json:"status"`
	DepartsAt   time.Time  `json:"departs_at"`
	PricePerPax int64      `json:"price_per_pax"`
	Version     int64      `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s Slot) Remaining() int {
	if s.CurrentPax >= s.MaxPax {
		return 0
	}
	return s.MaxPax - s.CurrentPax
}
