package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawMessage(t *testing.T) {
	at := time.Date(2025, time.June, 3, 14, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })

	msg := NewRawMessage("home/esp32s3/pir/mouvement", []byte("rain-12"))

	_, err := uuid.Parse(msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "home/esp32s3/pir/mouvement", msg.Topic)
	assert.Equal(t, []byte("rain-12"), msg.Value)
	assert.Equal(t, at, msg.ReceivedAt)
	assert.Nil(t, msg.Commit)

	other := NewRawMessage("t", nil)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestNewPublication(t *testing.T) {
	at := time.Date(2025, time.June, 3, 14, 30, 0, 0, time.UTC)
	msg := RawMessage{ID: "id-1", Topic: "sensors", ReceivedAt: at}
	obs := Observation{Category: CategoryRain, Temperature: 12}

	pub := NewPublication(msg, obs, Encode(obs))

	assert.Equal(t, Publication{
		MessageID:   "id-1",
		Topic:       "sensors",
		Category:    CategoryRain,
		Temperature: 12,
		Token:       "MSG|RENFORT|HEURE_12",
		ObservedAt:  at,
	}, pub)
}
