// Package events streams committed booking changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"safari_tours/internal/adapters/observability"
	"safari_tours/internal/domain"
)

const publishTimeout = 3 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     messageWriter
	topic string
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
		topic: topic,
	}
}

// PublishBooking writes one event keyed by booking id, so all events for a
// booking land on the same partition in order.
func (p *Producer) PublishBooking(ctx context.Context, e domain.BookingEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(e.BookingID),
		Value:   b,
		Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
		Time:    e.At,
	})
	status := 200
	if err != nil {
		status = 500
	}
	observability.ObserveExternal("kafka", p.topic, status, time.Since(start))
	return err
}

func (p *Producer) Close() error { return p.w.Close() }

// Noop is used when no brokers are configured.
type Noop struct{}

func (Noop) PublishBooking(context.Context, domain.BookingEvent) error { return nil }
