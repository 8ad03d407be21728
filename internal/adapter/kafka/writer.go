package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-stories/internal/config"
	"github.com/couchcryptid/weather-stories/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Snapshot is one loaded weather value as published to Kafka.
type Snapshot struct {
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Location    string              `json:"location"`
	Weather     domain.Weather      `json:"weather"`
	PublishedAt time.Time           `json:"published_at"`
}

// messageWriter is satisfied by *kafkago.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces weather snapshots to a Kafka topic.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured weather topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaWeatherTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishWeather writes one snapshot, keyed by location so a location's
// snapshots stay on one partition.
func (w *Writer) PublishWeather(ctx context.Context, snap Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the underlying writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Snapshot into a Kafka message.
func serializeToMessage(snap Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather snapshot: %w", err)
	}

	key := snap.Location
	if key == "" && snap.Coordinates != nil {
		key = snap.Coordinates.String()
	}

	headers := []kafkago.Header{
		{Key: "location", Value: []byte(snap.Location)},
		{Key: "published_at", Value: []byte(snap.PublishedAt.Format(time.RFC3339))},
	}
	if snap.Weather.ObservedAt != nil {
		headers = append(headers, kafkago.Header{Key: "observed_at", Value: []byte(snap.Weather.ObservedAt.Format(time.RFC3339))})
	}

	return kafkago.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: headers,
	}, nil
}
