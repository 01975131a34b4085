// Package kafka publishes committed order transitions to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"patternfactory/internal/core/domain/model/order"
	"patternfactory/internal/core/ports"
	"patternfactory/internal/pkg/metrics"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

const (
	DefaultTopic = "order.transitions"
	eventType    = "patternfactory.order.transitioned"
	eventSource  = "patternfactory/orders"
)

var ErrPublisherUnavailable = errors.New("transition publisher unavailable")

type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TransitionEvent is the message body, one per transition.
type TransitionEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	StateName string    `json:"state_name"`
	Trigger   string    `json:"trigger"`
	Actor     string    `json:"actor"`
	Automatic bool      `json:"automatic"`
	At        time.Time `json:"at"`
	Version   int64     `json:"version"`
}

var _ ports.TransitionPublisher = &Publisher{}

type Publisher struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewWriter builds the kafka-go writer for cfg.
func NewWriter(cfg Config) *kafka.Writer {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewPublisher(writer MessageWriter, m *metrics.Metrics, logger *slog.Logger) *Publisher {
	logger = logger.With("component", "TransitionPublisher")
	settings := gobreaker.Settings{
		Name:        "kafka-transitions",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			m.SetCircuitBreakerState(name, int(to))
		},
	}
	return &Publisher{
		writer:  writer,
		breaker: gobreaker.NewCircuitBreaker(settings),
		metrics: m,
		logger:  logger,
	}
}

// Publish writes one message per transition, keyed by order ID so that a
// partition sees an order's transitions in order.
func (p *Publisher) Publish(ctx context.Context, snapshot *order.Order, transitions []order.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(transitions))
	for _, t := range transitions {
		msg, err := newMessage(snapshot, t)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %w", ErrPublisherUnavailable, err)
	}
	p.metrics.RecordPublish(err == nil)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish transitions",
			"order_id", snapshot.ID().String(), "count", len(msgs), "error", err)
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newMessage(snapshot *order.Order, t order.Transition) (kafka.Message, error) {
	event := TransitionEvent{
		EventID:   t.ID.String(),
		OrderID:   t.OrderID.String(),
		From:      string(t.From),
		To:        string(t.To),
		StateName: t.To.Name(),
		Trigger:   string(t.Trigger),
		Actor:     t.Actor.String(),
		Automatic: t.Automatic,
		At:        t.At,
		Version:   snapshot.Version() + 1,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal transition %s: %w", event.EventID, err)
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: body,
		Time:  t.At,
		Headers: []kafka.Header{
			{Key: "ce-specversion", Value: []byte("1.0")},
			{Key: "ce-type", Value: []byte(eventType)},
			{Key: "ce-source", Value: []byte(eventSource)},
			{Key: "ce-id", Value: []byte(event.EventID)},
			{Key: "ce-time", Value: []byte(t.At.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
