package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/meteo-relay/internal/config"
	"github.com/couchcryptid/meteo-relay/internal/domain"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes sensor payloads from a Kafka topic.
// It implements pipeline.Extractor.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    1 << 20,
	})
	return &Reader{reader: r, logger: logger}
}

// Extract fetches the next message without committing it. The returned
// message carries a Commit callback for the pipeline to acknowledge it.
func (r *Reader) Extract(ctx context.Context) (domain.RawMessage, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawMessage{}, fmt.Errorf("fetch message: %w", err)
	}

	raw := mapMessageToRawMessage(msg)
	raw.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return raw, nil
}

// Close leaves the consumer group and closes the reader.
func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawMessage converts a Kafka message into a domain.RawMessage.
// The record timestamp becomes ReceivedAt so replays keep their produce time.
func mapMessageToRawMessage(msg kafkago.Message) domain.RawMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	id := headers["message_id"]
	if id == "" {
		id = uuid.NewString()
	}

	return domain.RawMessage{
		ID:         id,
		Key:        msg.Key,
		Value:      msg.Value,
		Headers:    headers,
		Topic:      msg.Topic,
		Partition:  msg.Partition,
		Offset:     msg.Offset,
		ReceivedAt: msg.Time,
	}
}
