package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/config"
	"github.com/couchcryptid/meteo-relay/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces observation publications to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one publication to the sink topic.
func (w *Writer) Publish(ctx context.Context, pub domain.Publication) error {
	msg, err := serializeToMessage(pub)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write observation: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Publication into a Kafka message keyed by
// category so one category stays on one partition.
func serializeToMessage(pub domain.Publication) (kafkago.Message, error) {
	data, err := json.Marshal(pub)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize publication: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(pub.Category),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "message_id", Value: []byte(pub.MessageID)},
			{Key: "category", Value: []byte(pub.Category)},
			{Key: "observed_at", Value: []byte(pub.ObservedAt.Format(time.RFC3339))},
		},
	}, nil
}
