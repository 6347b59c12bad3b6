package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// SearchEvent summarises one completed search.
type SearchEvent struct {
	ID            uuid.UUID `json:"id"`
	Provider      string    `json:"provider"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    *string   `json:"return_date,omitempty"`
	NonStop       bool      `json:"non_stop"`
	SortBy        string    `json:"sort_by"`
	RawOffers     int       `json:"raw_offers"`
	SkippedOffers int       `json:"skipped_offers"`
	Results       int       `json:"results"`
	CacheHit      bool      `json:"cache_hit"`
	LowestPrice   string    `json:"lowest_price,omitempty"`
	PriceCurrency string    `json:"price_currency,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e SearchEvent) Key() string {
	return e.Origin + "-" + e.Destination
}

//go:generate mockgen -destination=../mocks/mock_publisher.go -package=mocks . Publisher

type Publisher interface {
	Publish(ctx context.Context, event SearchEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes search events as JSON, keyed by route.
type KafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "flight_searches"
}

func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	logger = logger.With().Str("component", "kafka_publisher").Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn().Err(err).Int("count", len(messages)).Msg("failed to deliver search events")
			}
		},
	}

	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event SearchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal search event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
		Time:  event.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write search event: %w", err)
	}

	p.logger.Debug().Str("event_id", event.ID.String()).Str("route", event.Key()).Msg("published search event")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NoOpPublisher struct{}

func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (NoOpPublisher) Publish(ctx context.Context, event SearchEvent) error {
	return nil
}

func (NoOpPublisher) Close() error {
	return nil
}
