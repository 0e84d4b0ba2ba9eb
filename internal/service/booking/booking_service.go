// Package booking sequences reservation workflows around the capacity ledger
// and the cancellation policy.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/clock"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/inventory"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/metrics"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type BookingUseCase interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ConfirmReservation(ctx context.Context, id string) (*domain.Reservation, error)
	PreviewCancellation(ctx context.Context, id string) (*CancellationResult, error)
	CancelReservation(ctx context.Context, id string) (*CancellationResult, error)
	ChangePassengers(ctx context.Context, id string, pax int) (*domain.Reservation, error)
}

type Cache interface {
	AcquireIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseIdempotencyKey(ctx context.Context, key string) error
	InvalidateSlots(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Policy prices a cancellation. *cancellation.Policy implements it.
type Policy interface {
	Calculate(totalPrice int64, departure time.Time, status domain.ReservationStatus, now time.Time) cancellation.Quote
}

type CreateReservationInput struct {
	SlotID         string `json:"slot_id"`
	Pax            int    `json:"pax"`
	Email          string `json:"email"`
	IdempotencyKey string `json:"-"`
}

// CancellationResult pairs the reservation with the fee decision. When
// Quote.CanCancel is false the reservation was left untouched.
type CancellationResult struct {
	Reservation *domain.Reservation
	Quote       cancellation.Quote
}

type BookingService struct {
	reservations       repository.ReservationRepository
	slots              inventory.Store
	policy             Policy
	clock              clock.Clock
	cache              Cache
	producer           Producer
	reservationTopic   string
	notificationsTopic string
	idempotencyTTL     time.Duration
	maxAttempts        int
	logger             *log.Logger
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, reservationTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.reservationTopic = reservationTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithIdempotencyTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// WithMaxAttempts bounds how often a conflicting ledger update is retried.
func WithMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(logger *log.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewBookingService(
	reservations repository.ReservationRepository,
	slots inventory.Store,
	policy Policy,
	clk clock.Clock,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		reservations:   reservations,
		slots:          slots,
		policy:         policy,
		clock:          clk,
		idempotencyTTL: 30 * time.Minute,
		maxAttempts:    5,
		logger:         log.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateReservation(ctx context.Context, input CreateReservationInput) (_ *domain.Reservation, err error) {
	if input.Pax < 1 {
		return nil, domain.ErrInvalidPax
	}
	if input.Email == "" {
		return nil, domain.ErrEmailRequired
	}

	ctx, span := tracing.Start(ctx, "booking.CreateReservation",
		attribute.String("slot.id", input.SlotID), attribute.Int("pax", input.Pax))
	defer func() { tracing.End(span, err) }()

	claimed, err := s.claimIdempotencyKey(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil && claimed {
			if relErr := s.cache.ReleaseIdempotencyKey(ctx, input.IdempotencyKey); relErr != nil {
				s.logger.Printf("WARN: release idempotency key %s: %v", input.IdempotencyKey, relErr)
			}
		}
	}()

	slot, err := s.slots.GetByID(ctx, input.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.DepartsAt.IsZero() && !slot.DepartsAt.After(s.clock.Now()) {
		return nil, domain.ErrSlotDeparted
	}

	if _, err := s.reserve(ctx, slot.ID, input.Pax); err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		ID:              uuid.NewString(),
		SlotID:          slot.ID,
		Pax:             input.Pax,
		Status:          domain.ReservationStatusPending,
		TotalPrice:      slot.PricePerPax * int64(input.Pax),
		ReservationDate: slot.DepartsAt,
		Email:           input.Email,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		if _, relErr := s.release(ctx, slot.ID, input.Pax); relErr != nil {
			s.logger.Printf("ERROR: compensating release of %d seats on slot %s failed: %v", input.Pax, slot.ID, relErr)
		}
		return nil, err
	}

	s.afterLedgerChange(ctx, kafka.EventReservationCreated, reservation, nil)
	return reservation, nil
}

func (s *BookingService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *BookingService) ConfirmReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.ReservationStatusPending {
		return nil, domain.ErrReservationPending
	}

	updated, err := s.reservations.TransitionStatus(ctx, id, domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.ErrReservationPending
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventReservationConfirmed, updated, nil)
	return updated, nil
}

// PreviewCancellation quotes the fee a cancellation would cost right now
// without changing anything.
func (s *BookingService) PreviewCancellation(ctx context.Context, id string) (*CancellationResult, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	quote := s.policy.Calculate(current.TotalPrice, current.ReservationDate, current.Status, s.clock.Now())
	return &CancellationResult{Reservation: current, Quote: quote}, nil
}

// CancelReservation charges the fee and frees the seats. Seats are released
// only by the call whose cancelled transition succeeded, so concurrent or
// repeated cancellations free them once.
func (s *BookingService) CancelReservation(ctx context.Context, id string) (_ *CancellationResult, err error) {
	ctx, span := tracing.Start(ctx, "booking.CancelReservation", attribute.String("reservation.id", id))
	defer func() { tracing.End(span, err) }()

	now := s.clock.Now()
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		current, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		quote := s.policy.Calculate(current.TotalPrice, current.ReservationDate, current.Status, now)
		if !quote.CanCancel {
			return &CancellationResult{Reservation: current, Quote: quote}, nil
		}

		updated, err := s.reservations.Cancel(ctx, id, current.Status, current.Pax, current.TotalPrice, quote.CancellationFee)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		result := &CancellationResult{Reservation: updated, Quote: quote}
		if _, err := s.release(ctx, updated.SlotID, updated.Pax); err != nil {
			s.logger.Printf("ERROR: reservation %s cancelled but %d seats on slot %s were not released: %v",
				updated.ID, updated.Pax, updated.SlotID, err)
			return result, fmt.Errorf("release seats: %w", err)
		}

		metrics.ObserveCancellationFee(quote.CancellationFee)
		s.afterLedgerChange(ctx, kafka.EventReservationCancelled, updated, &quote)
		return result, nil
	}
	return nil, domain.ErrConflict
}

// ChangePassengers edits the party size. Growing reserves the extra seats
// before the reservation is updated; shrinking updates it first and then
// releases the difference.
func (s *BookingService) ChangePassengers(ctx context.Context, id string, pax int) (_ *domain.Reservation, err error) {
	if pax < 1 {
		return nil, domain.ErrInvalidPax
	}

	ctx, span := tracing.Start(ctx, "booking.ChangePassengers",
		attribute.String("reservation.id", id), attribute.Int("pax", pax))
	defer func() { tracing.End(span, err) }()

	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.Holding() {
		return nil, domain.ErrReservationNotHeld
	}
	if pax == current.Pax {
		return current, nil
	}

	unitPrice := current.TotalPrice / int64(current.Pax)
	total := unitPrice * int64(pax)
	delta := pax - current.Pax

	var updated *domain.Reservation
	if delta > 0 {
		slot, slotErr := s.slots.GetByID(ctx, current.SlotID)
		if slotErr != nil {
			return nil, slotErr
		}
		if !slot.DepartsAt.IsZero() && !slot.DepartsAt.After(s.clock.Now()) {
			return nil, domain.ErrSlotDeparted
		}
		if _, err := s.reserve(ctx, current.SlotID, delta); err != nil {
			return nil, err
		}
		updated, err = s.reservations.UpdatePax(ctx, id, current.Status, current.Pax, pax, total)
		if err != nil {
			if _, relErr := s.release(ctx, current.SlotID, delta); relErr != nil {
				s.logger.Printf("ERROR: compensating release of %d seats on slot %s failed: %v", delta, current.SlotID, relErr)
			}
			return nil, err
		}
	} else {
		updated, err = s.reservations.UpdatePax(ctx, id, current.Status, current.Pax, pax, total)
		if err != nil {
			return nil, err
		}
		if _, err := s.release(ctx, current.SlotID, -delta); err != nil {
			s.logger.Printf("ERROR: reservation %s shrunk to %d pax but %d seats on slot %s were not released: %v",
				id, pax, -delta, current.SlotID, err)
			return updated, fmt.Errorf("release seats: %w", err)
		}
	}

	s.afterLedgerChange(ctx, kafka.EventReservationPaxChanged, updated, nil)
	return updated, nil
}

// reserve retries only on conflicts; every other outcome is final.
func (s *BookingService) reserve(ctx context.Context, slotID string, pax int) (int, error) {
	var err error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		var n int
		n, err = s.slots.Reserve(ctx, slotID, pax)
		metrics.ObserveReserve(err)
		if !errors.Is(err, domain.ErrConflict) {
			return n, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
	}
	return 0, err
}

// release treats an over-release as a warning: the ledger is already clamped.
func (s *BookingService) release(ctx context.Context, slotID string, pax int) (int, error) {
	var err error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		var n int
		n, err = s.slots.Release(ctx, slotID, pax)
		metrics.ObserveRelease(err)
		if errors.Is(err, domain.ErrOverRelease) {
			s.logger.Printf("WARN: %v", err)
			return n, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return n, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
	}
	return 0, err
}

func (s *BookingService) claimIdempotencyKey(ctx context.Context, key string) (bool, error) {
	if key == "" || s.cache == nil {
		return false, nil
	}
	ok, err := s.cache.AcquireIdempotencyKey(ctx, key, s.idempotencyTTL)
	if err != nil {
		s.logger.Printf("WARN: idempotency check unavailable, continuing without it: %v", err)
		return false, nil
	}
	if !ok {
		return false, domain.ErrDuplicateRequest
	}
	return true, nil
}

func (s *BookingService) afterLedgerChange(ctx context.Context, eventType string, r *domain.Reservation, quote *cancellation.Quote) {
	if s.cache != nil {
		if err := s.cache.InvalidateSlots(ctx); err != nil {
			s.logger.Printf("WARN: invalidate slots cache: %v", err)
		}
	}
	s.publish(ctx, eventType, r, quote)
}

func (s *BookingService) publish(ctx context.Context, eventType string, r *domain.Reservation, quote *cancellation.Quote) {
	if s.producer == nil || s.reservationTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		SlotID:        r.SlotID,
		Pax:           r.Pax,
		Email:         r.Email,
		Status:        string(r.Status),
		TotalPrice:    r.TotalPrice,
		DepartsAt:     r.ReservationDate,
	}
	if quote != nil {
		event.CancellationFee = quote.CancellationFee
		event.RefundAmount = quote.RefundAmount
	}

	if err := s.producer.Publish(ctx, s.reservationTopic, r.ID, event); err != nil {
		s.logger.Printf("WARN: failed to publish %s event for reservation %s: %v", eventType, r.ID, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, r.ID, event); err != nil {
			s.logger.Printf("WARN: failed to publish %s notification for reservation %s: %v", eventType, r.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
