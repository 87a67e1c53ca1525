// Package redpanda publishes domain events to a Kafka-compatible broker
// (Redpanda in the local stack).
package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/jobtrackr/internal/adapter/observability"
	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

// ErrBrokerUnavailable is returned while the circuit breaker is open.
var ErrBrokerUnavailable = errors.New("event broker unavailable")

// Publish outcomes reported to metrics.
const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)

// producer is the subset of *kgo.Client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Producer implements domain.EventPublisher. Each event is one JSON record
// keyed by its aggregate id so changes to one entity stay ordered.
type Producer struct {
	client  producer
	topic   string
	breaker *obsctx.CircuitBreaker
}

// NewProducer connects to brokers and publishes to topic. breaker may be nil.
func NewProducer(brokers []string, topic string, breaker *obsctx.CircuitBreaker) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.NewProducer: no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("op=redpanda.NewProducer: topic name cannot be empty")
	}
	slog.Info("creating redpanda producer", slog.Any("brokers", brokers), slog.String("topic", topic))

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.WithHooks(kotelService.Hooks()...),
		kgo.RequestRetries(3),
		kgo.RecordRetries(3),
		kgo.DialTimeout(5*time.Second),
		kgo.ProduceRequestTimeout(5*time.Second),
		kgo.ProducerBatchMaxBytes(1000000),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.NewProducer: %w", err)
	}
	return newProducer(client, topic, breaker), nil
}

func newProducer(client producer, topic string, breaker *obsctx.CircuitBreaker) *Producer {
	return &Producer{client: client, topic: topic, breaker: breaker}
}

// Publish sends e and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx domain.Context, e domain.Event) error {
	// Encode before asking the breaker: a bad payload says nothing about
	// broker health and must not take the half-open trial.
	b, err := json.Marshal(e)
	if err != nil {
		observability.RecordEventPublished(e.Type, outcomeError)
		return fmt.Errorf("op=redpanda.publish: marshal event: %w", err)
	}
	if !p.breaker.Allow() {
		observability.RecordEventPublished(e.Type, outcomeSkipped)
		return fmt.Errorf("op=redpanda.publish: %w", ErrBrokerUnavailable)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.AggregateID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(e.ID)},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.breaker.Failure()
		observability.RecordEventPublished(e.Type, outcomeError)
		return fmt.Errorf("op=redpanda.publish: %w", err)
	}
	p.breaker.Success()
	observability.RecordEventPublished(e.Type, outcomeOK)
	obsctx.LoggerFromContext(ctx).Debug("event published",
		slog.String("event", e.Type),
		slog.String("event_id", e.ID),
		slog.String("topic", p.topic))
	return nil
}

// Close releases the client.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

// NoopPublisher drops every event. It is used when no brokers are configured.
type NoopPublisher struct{}

// Publish implements domain.EventPublisher.
func (NoopPublisher) Publish(ctx domain.Context, e domain.Event) error {
	obsctx.LoggerFromContext(ctx).Debug("event dropped, no broker configured", slog.String("event", e.Type))
	return nil
}
