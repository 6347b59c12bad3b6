package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() SearchEvent {
	return SearchEvent{
		ID:            uuid.New(),
		Provider:      "sample",
		Origin:        "DEL",
		Destination:   "BOM",
		DepartureDate: "2025-12-15",
		SortBy:        "cheapest",
		RawOffers:     8,
		SkippedOffers: 1,
		Results:       7,
		LowestPrice:   "4873.50",
		PriceCurrency: "INR",
		OccurredAt:    time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, zerolog.Nop())

	event := sampleEvent()
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "DEL-BOM", string(msg.Key))
	assert.Equal(t, event.OccurredAt, msg.Time)

	var decoded SearchEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, zerolog.Nop())

	err := p.Publish(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "broker down")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, zerolog.Nop())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher(KafkaPublisherConfig{Brokers: []string{"localhost:9092"}, Topic: "flight_searches"}, zerolog.Nop())
	require.NotNil(t, p)

	writer, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "flight_searches", writer.Topic)
	assert.True(t, writer.Async)
}

func TestNoOpPublisher(t *testing.T) {
	p := NewNoOpPublisher()
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.NoError(t, p.Close())
}
