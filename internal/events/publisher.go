package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StatusChanged is emitted whenever a webhook or API call moves a session.
type StatusChanged struct {
	SessionRef       string    `json:"session_ref"`
	GatewayReference string    `json:"gateway_reference,omitempty"`
	PaymentID        string    `json:"payment_id,omitempty"`
	Status           string    `json:"status"`
	Source           string    `json:"source"`
	EventType        string    `json:"event_type,omitempty"`
	AmountMinor      int64     `json:"amount_minor,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Key partitions events by session so consumers see them in order.
func (e StatusChanged) Key() string {
	if e.SessionRef != "" {
		return e.SessionRef
	}
	return e.GatewayReference
}

// Publisher delivers status-change events.
type Publisher interface {
	Publish(ctx context.Context, event StatusChanged) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by session.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher creates a publisher over the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event StatusChanged) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
	}); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}

	p.logger.Debug("Status event published",
		zap.String("session_ref", event.SessionRef),
		zap.String("status", event.Status),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the log. Used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event StatusChanged) error {
	p.logger.Info("Payment session status changed",
		zap.String("session_ref", event.SessionRef),
		zap.String("gateway_reference", event.GatewayReference),
		zap.String("payment_id", event.PaymentID),
		zap.String("status", event.Status),
		zap.String("source", event.Source),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

// NewPublisher picks Kafka when brokers are configured.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(brokers, topic, logger)
}
