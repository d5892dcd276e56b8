package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Sentinels(t *testing.T) {
	c := NewClassifier()

	obs, err := c.Classify("MOUVEMENT")
	require.NoError(t, err)
	assert.Equal(t, Observation{Category: CategoryStorm, Temperature: 23}, obs)

	obs, err = c.Classify("  PAS_DE_MOUVEMENT\n")
	require.NoError(t, err)
	assert.Equal(t, Observation{Category: CategorySun, Temperature: 30}, obs)
}

func TestClassify_SentinelIsCaseSensitive(t *testing.T) {
	_, err := NewClassifier().Classify("mouvement")
	require.ErrorIs(t, err, ErrPayloadUnrecognized)
}

func TestClassify_Empty(t *testing.T) {
	c := NewClassifier()
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := c.Classify(raw)
		assert.ErrorIs(t, err, ErrEmptyPayload, "payload %q", raw)
	}
}

func TestClassify_Pairs(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected Observation
	}{
		{"rain", "rain-25", Observation{CategoryRain, 25}},
		{"padded segments", " cloud - 18 ", Observation{CategoryCloud, 18}},
		{"negative temperature", "snow--3", Observation{CategorySnow, -3}},
		{"explicit plus", "sun-+31", Observation{CategorySun, 31}},
		{"zero", "snow-0", Observation{CategorySnow, 0}},
		{"unknown category kept verbatim", "fog-8", Observation{Category("fog"), 8}},
		{"category case kept", "Rain-12", Observation{Category("Rain"), 12}},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := c.Classify(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, obs)
		})
	}
}

func TestClassify_PairRoundTripsIntegers(t *testing.T) {
	c := NewClassifier()
	for _, cat := range Categories() {
		for _, temp := range []int{-40, -1, 0, 7, 23, 120} {
			obs, err := c.Classify(fmt.Sprintf("%s-%d", cat, temp))
			require.NoError(t, err)
			assert.Equal(t, Observation{Category: cat, Temperature: temp}, obs)
		}
	}
}

func TestClassify_PairMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"non numeric temperature", "rain-abc"},
		{"empty temperature", "rain-"},
		{"blank temperature", "rain-   "},
		{"empty category", "-12"},
		{"decimal temperature", "rain-12.5"},
		{"overflow", "rain-99999999999999999999"},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Classify(tt.payload)
			require.ErrorIs(t, err, ErrPayloadMalformed)
			assert.Contains(t, err.Error(), "pair")
		})
	}
}

func TestClassify_Records(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected Observation
	}{
		{"motion with temp", `{"motion":1,"temp":23}`, Observation{CategoryStorm, 23}},
		{"no motion without temp", `{"motion":0}`, Observation{CategorySun, 30}},
		{"motion without temp", `{"motion":true}`, Observation{CategoryStorm, 23}},
		{"bool false", `{"motion":false,"temp":19}`, Observation{CategorySun, 19}},
		{"truncates positive", `{"motion":1,"temp":23.9}`, Observation{CategoryStorm, 23}},
		{"truncates negative toward zero", `{"motion":0,"temp":-2.7}`, Observation{CategorySun, -2}},
		{"string motion", `{"motion":"on","temp":12}`, Observation{CategoryStorm, 12}},
		{"string temp falls back", `{"motion":0,"temp":"hot"}`, Observation{CategorySun, 30}},
		{"null temp falls back", `{"motion":1,"temp":null}`, Observation{CategoryStorm, 23}},
		{"huge temp falls back", `{"motion":1,"temp":1e400}`, Observation{CategoryStorm, 23}},
		{"extra fields ignored", `{"motion":1,"temp":4,"rssi":-60}`, Observation{CategoryStorm, 4}},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := c.Classify(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, obs)
		})
	}
}

func TestClassify_RecordWithoutCategory(t *testing.T) {
	c := NewClassifier()
	for _, payload := range []string{`{}`, `{"temp":23}`, `{"motion":null}`, `{"motion":"maybe"}`} {
		_, err := c.Classify(payload)
		assert.ErrorIs(t, err, ErrPayloadMalformed, "payload %s", payload)
	}
}

func TestClassify_RecordOutOfIntRange(t *testing.T) {
	_, err := NewClassifier().Classify(`{"motion":1,"temp":1e300}`)
	require.ErrorIs(t, err, ErrPayloadMalformed)
}

func TestClassify_RecordWithDashInValue(t *testing.T) {
	obs, err := NewClassifier().Classify(`{"motion":1,"temp":-4,"node":"esp32-s3"}`)
	require.NoError(t, err)
	assert.Equal(t, Observation{CategoryStorm, -4}, obs)
}

func TestClassify_Unrecognized(t *testing.T) {
	c := NewClassifier()
	for _, payload := range []string{
		"not-json-not-dash",
		"hello",
		"42",
		"null",
		`["motion"]`,
		`{"motion":1`,
		`{"motion":1} {"motion":0}`,
	} {
		_, err := c.Classify(payload)
		assert.ErrorIs(t, err, ErrPayloadUnrecognized, "payload %q", payload)
	}
}

func TestClassifier_ShapesOrder(t *testing.T) {
	assert.Equal(t, []string{"sentinel", "pair", "record"}, NewClassifier().Shapes())
}

func TestRecognizers_Isolated(t *testing.T) {
	assert.Equal(t, notApplicable, recognizeSentinel("rain-12").outcome)
	assert.Equal(t, matched, recognizeSentinel(SentinelMotion).outcome)

	assert.Equal(t, notApplicable, recognizePair(`{"a":"b-c"}`).outcome)
	assert.Equal(t, notApplicable, recognizePair("a-b-c").outcome)
	assert.Equal(t, invalid, recognizePair("rain-x").outcome)
	assert.Equal(t, matched, recognizePair("rain-1").outcome)

	assert.Equal(t, notApplicable, recognizeRecord("rain-1").outcome)
	assert.Equal(t, matched, recognizeRecord(`{}`).outcome)
}

func TestRejectReason(t *testing.T) {
	c := NewClassifier()

	_, err := c.Classify("")
	assert.Equal(t, "empty", RejectReason(err))
	_, err = c.Classify("hello")
	assert.Equal(t, "unrecognized", RejectReason(err))
	_, err = c.Classify("rain-abc")
	assert.Equal(t, "malformed", RejectReason(err))
	assert.Equal(t, "error", RejectReason(assert.AnError))
}
