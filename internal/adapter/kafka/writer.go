package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/couchcryptid/sunspot-archive-service/internal/config"
	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const eventType = "observation.archived"

// Writer publishes archived-observation events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Writer struct {
	writer  *kafkago.Writer
	brokers []string
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.HTTPClientTimeout,
	}
	return &Writer{writer: w, brokers: cfg.KafkaBrokers, logger: logger}
}

// Publish serializes one event and writes it keyed by observation ID, so all
// events of an observation land on the same partition.
func (w *Writer) Publish(ctx context.Context, event domain.ObservationArchived) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Observation.ID, err)
	}
	w.logger.Debug("event published", "observation_id", event.Observation.ID, "topic", w.writer.Topic)
	return nil
}

// Ping dials the first reachable broker.
func (w *Writer) Ping(ctx context.Context) error {
	var lastErr error
	for _, b := range w.brokers {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", b)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	if lastErr == nil {
		return fmt.Errorf("no kafka brokers configured")
	}
	return fmt.Errorf("kafka unreachable: %w", lastErr)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an ObservationArchived event into a Kafka message.
func serializeToMessage(event domain.ObservationArchived) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Observation.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "archived_at", Value: []byte(event.ArchivedAt.Format(time.RFC3339))},
		},
	}, nil
}
