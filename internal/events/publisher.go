package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const producerName = "shopcore"

// Publisher emits order events to the outbound stream. Publishing is
// fire-and-forget: failures are logged and never reach the caller.
type Publisher interface {
	Publish(eventType, orderID string, payload any)
	Close() error
}

// kafkaWriter is the subset of kafka.Writer the publisher uses.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes to a Kafka topic keyed by order id.
type KafkaPublisher struct {
	writer kafkaWriter
	logger *slog.Logger
}

// NewKafkaPublisher builds an async producer. Async mode trades delivery
// confirmation for not blocking the request path.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish wraps payload into an envelope and hands it to the writer.
func (p *KafkaPublisher) Publish(eventType, orderID string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("marshal event payload", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}
	envelope := Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   producerName,
		OrderID:    orderID,
		Payload:    raw,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("marshal event envelope", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}

	msg := kafka.Message{
		Key:   []byte(orderID),
		Value: value,
		Time:  envelope.OccurredAt,
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Error("publish event", slog.String("type", eventType), slog.String("error", err.Error()))
	}
}

// Close flushes and shuts down the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string, string, any) {}
func (NopPublisher) Close() error                { return nil }
