package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RawMessage is a single transport delivery. Kafka fills the partition and
// offset fields; MQTT and NATS only set Topic.
type RawMessage struct {
	ID         string
	Key        []byte
	Value      []byte
	Headers    map[string]string
	Topic      string
	Partition  int
	Offset     int64
	ReceivedAt time.Time
	Commit     func(ctx context.Context) error
}

// NewRawMessage stamps a delivery with a fresh id and the package clock.
func NewRawMessage(topic string, value []byte) RawMessage {
	return RawMessage{
		ID:         uuid.NewString(),
		Value:      value,
		Topic:      topic,
		ReceivedAt: clock.Now(),
	}
}

// Observation is the normalized reading extracted from a payload.
type Observation struct {
	Category    Category `json:"category"`
	Temperature int      `json:"temperature"`
}

// Publication is the record emitted downstream for every accepted observation.
type Publication struct {
	MessageID   string    `json:"message_id"`
	Topic       string    `json:"source_topic,omitempty"`
	Category    Category  `json:"category"`
	Temperature int       `json:"temperature"`
	Token       string    `json:"token"`
	ObservedAt  time.Time `json:"observed_at"`
}

// NewPublication pairs an observation with its token and source message.
func NewPublication(msg RawMessage, obs Observation, token string) Publication {
	return Publication{
		MessageID:   msg.ID,
		Topic:       msg.Topic,
		Category:    obs.Category,
		Temperature: obs.Temperature,
		Token:       token,
		ObservedAt:  msg.ReceivedAt,
	}
}
