package email

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/skybooking/internal/kafka"
)

var ErrNoRecipient = errors.New("event has no recipient")

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender writes notifications to the log; there is no SMTP relay yet.
type Sender struct {
	logger *log.Logger
}

func NewSender(logger *log.Logger) *Sender {
	if logger == nil {
		logger = log.Default()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Compose(event)
	if err != nil {
		return err
	}
	s.logger.Printf("send email to %s: %s | %s", msg.To, msg.Subject, msg.Body)
	return nil
}

// Compose renders the notification for event. Amounts are minor currency units.
func Compose(event kafka.ReservationEvent) (Message, error) {
	if event.Email == "" {
		return Message{}, ErrNoRecipient
	}

	departs := event.DepartsAt.UTC().Format(time.RFC1123)
	msg := Message{To: event.Email}
	switch event.Type {
	case kafka.EventReservationCreated:
		msg.Subject = "Reservation received"
		msg.Body = fmt.Sprintf("Reservation %s holds %d seat(s) on %s departing %s. Total %d.",
			event.ReservationID, event.Pax, event.SlotID, departs, event.TotalPrice)
	case kafka.EventReservationConfirmed:
		msg.Subject = "Reservation confirmed"
		msg.Body = fmt.Sprintf("Reservation %s on %s departing %s is confirmed.",
			event.ReservationID, event.SlotID, departs)
	case kafka.EventReservationCancelled:
		msg.Subject = "Reservation cancelled"
		msg.Body = fmt.Sprintf("Reservation %s was cancelled. Fee %d, refund %d.",
			event.ReservationID, event.CancellationFee, event.RefundAmount)
	case kafka.EventReservationPaxChanged:
		msg.Subject = "Reservation updated"
		msg.Body = fmt.Sprintf("Reservation %s now holds %d seat(s). New total %d.",
			event.ReservationID, event.Pax, event.TotalPrice)
	default:
		return Message{}, fmt.Errorf("unknown event type %q", event.Type)
	}
	return msg, nil
}
