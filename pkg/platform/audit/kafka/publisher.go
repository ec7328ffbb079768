// Package kafka streams audit events to a Kafka topic for deployments that
// feed an external audit pipeline. Delivery is fire-and-forget: the domain
// never blocks on, or reads back, its own emitted history.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
)

// Publisher produces audit events to a single topic, keyed by actor so an
// actor's events land in one partition in emission order.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects a Kafka producer for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// wireEvent is the JSON structure published to the topic.
type wireEvent struct {
	Category   string `json:"category"`
	Timestamp  string `json:"timestamp"`
	Actor      string `json:"actor"`
	Subject    string `json:"subject"`
	Action     string `json:"action"`
	Decision   string `json:"decision,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Commitment string `json:"commitment,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	Position   int    `json:"position,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Emit produces the event asynchronously. Produce failures are logged, never
// surfaced to the emitting operation.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(wireEvent{
		Category:   string(event.Category),
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		Actor:      event.Actor.String(),
		Subject:    event.Subject,
		Action:     event.Action,
		Decision:   event.Decision,
		Reason:     event.Reason,
		Commitment: event.Commitment,
		Amount:     event.Amount,
		Position:   event.Position,
		RequestID:  event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Actor.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("audit event produce failed",
				"topic", p.topic,
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes in-flight records and releases the client.
func (p *Publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
