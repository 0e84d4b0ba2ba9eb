package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer reads reservation events as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			StartOffset:       kafka.FirstOffset,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeEvents hands each decoded event to handler and commits its offset
// once handler returns nil. Messages that are not valid events are logged and
// committed so they cannot block the partition. It returns on the first
// handler or reader error, including ctx cancellation.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, ReservationEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			log.Printf("WARN: skip message at %s/%d offset %d: %v", msg.Topic, msg.Partition, msg.Offset, err)
		} else if err := handler(ctx, event); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func DecodeEvent(data []byte) (ReservationEvent, error) {
	var event ReservationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ReservationEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Type == "" || event.ReservationID == "" {
		return ReservationEvent{}, fmt.Errorf("decode event: missing type or reservation id")
	}
	return event, nil
}
