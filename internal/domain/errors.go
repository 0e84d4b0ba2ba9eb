package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSlotNotFound             = errors.New("slot not found")
	ErrSlotNotOpen              = errors.New("slot is not open")
	ErrInsufficientCapacity     = errors.New("insufficient capacity")
	ErrOverRelease              = errors.New("release exceeds held seats")
	ErrConflict                 = errors.New("concurrent update conflict")
	ErrInvalidPax               = errors.New("pax must be positive")
	ErrInvalidTierConfiguration = errors.New("invalid cancellation tier configuration")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationNotHeld  = errors.New("reservation no longer holds seats")
	ErrReservationPending  = errors.New("reservation is not pending")
	ErrSlotDeparted        = errors.New("slot has already departed")
	ErrDuplicateRequest    = errors.New("duplicate reservation request")
	ErrEmailRequired       = errors.New("email is required")
	ErrInvalidSlotStatus   = errors.New("invalid slot status")
)

// CapacityError reports how many seats were left when a reservation did not fit.
type CapacityError struct {
	SlotID    string
	Requested int
	Remaining int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("slot %s: requested %d seats, only %d left", e.SlotID, e.Requested, e.Remaining)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientCapacity }

// SlotNotOpenError carries the status that blocked the reservation.
type SlotNotOpenError struct {
	SlotID string
	Status SlotStatus
}

func (e *SlotNotOpenError) Error() string {
	return fmt.Sprintf("slot %s is %s", e.SlotID, e.Status)
}

func (e *SlotNotOpenError) Unwrap() error { return ErrSlotNotOpen }

// OverReleaseError is returned together with the clamped pax count.
type OverReleaseError struct {
	SlotID    string
	Requested int
	Held      int
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("slot %s: release of %d seats exceeds %d held, clamped to 0", e.SlotID, e.Requested, e.Held)
}

func (e *OverReleaseError) Unwrap() error { return ErrOverRelease }
