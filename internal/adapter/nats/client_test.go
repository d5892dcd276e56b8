package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/domain"
	natsgo "github.com/nats-io/nats.go"
)

func TestMapMessage(t *testing.T) {
	msg := &natsgo.Msg{
		Subject: "home.esp32s3.pir.mouvement",
		Data:    []byte("PAS_DE_MOUVEMENT"),
		Header:  natsgo.Header{"Node": []string{"esp32-s3"}},
	}

	raw := mapMessage(msg)

	if raw.Topic != "home.esp32s3.pir.mouvement" {
		t.Errorf("expected subject as topic, got '%s'", raw.Topic)
	}
	if string(raw.Value) != "PAS_DE_MOUVEMENT" {
		t.Errorf("expected payload 'PAS_DE_MOUVEMENT', got '%s'", raw.Value)
	}
	if raw.Headers["Node"] != "esp32-s3" {
		t.Errorf("expected Node header 'esp32-s3', got '%s'", raw.Headers["Node"])
	}
	if raw.ID == "" {
		t.Error("expected a message id")
	}
}

func TestMapMessage_NoHeaders(t *testing.T) {
	raw := mapMessage(&natsgo.Msg{Subject: "s", Data: []byte("rain-1")})
	if raw.Headers != nil {
		t.Errorf("expected nil headers, got %v", raw.Headers)
	}
}

func TestEncodePublication(t *testing.T) {
	pub := domain.Publication{
		MessageID:   "msg-1",
		Category:    domain.CategoryStorm,
		Temperature: 23,
		Token:       "MSG|ATTENTION|HEURE_23",
		ObservedAt:  time.Date(2025, 6, 3, 14, 30, 0, 0, time.UTC),
	}

	data, err := encodePublication(pub)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var parsed domain.Publication
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if parsed != pub {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, pub)
	}
}

func TestPublish_NoSubjectIsNoop(t *testing.T) {
	c := &Client{}
	if err := c.Publish(context.Background(), domain.Publication{}); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}
