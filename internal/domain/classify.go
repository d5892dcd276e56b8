package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	// SentinelMotion and SentinelNoMotion are the bare tokens sent by PIR nodes.
	SentinelMotion   = "MOUVEMENT"
	SentinelNoMotion = "PAS_DE_MOUVEMENT"

	pairSeparator = "-"
)

var sentinels = map[string]Category{
	SentinelMotion:   CategoryStorm,
	SentinelNoMotion: CategorySun,
}

type outcome int

const (
	notApplicable outcome = iota
	matched
	invalid
)

// recognition is what a single shape recognizer reports.
type recognition struct {
	outcome outcome
	obs     Observation
	err     error
}

func notApplicableResult() recognition { return recognition{outcome: notApplicable} }

func matchedResult(obs Observation) recognition { return recognition{outcome: matched, obs: obs} }

func invalidResult(format string, args ...any) recognition {
	return recognition{
		outcome: invalid,
		err:     fmt.Errorf("%w: %s", ErrPayloadMalformed, fmt.Sprintf(format, args...)),
	}
}

type recognizer struct {
	shape     string
	recognize func(payload string) recognition
}

// Classifier turns raw payloads into observations. Recognizers are tried in
// order and the first one that applies decides the result.
type Classifier struct {
	recognizers []recognizer
}

// NewClassifier returns a classifier for the sentinel, pair and record shapes.
func NewClassifier() *Classifier {
	return &Classifier{
		recognizers: []recognizer{
			{shape: "sentinel", recognize: recognizeSentinel},
			{shape: "pair", recognize: recognizePair},
			{shape: "record", recognize: recognizeRecord},
		},
	}
}

// Shapes lists the recognizer names in evaluation order.
func (c *Classifier) Shapes() []string {
	out := make([]string, len(c.recognizers))
	for i, r := range c.recognizers {
		out[i] = r.shape
	}
	return out
}

// Classify extracts an observation from raw. The error wraps one of
// ErrEmptyPayload, ErrPayloadUnrecognized or ErrPayloadMalformed.
func (c *Classifier) Classify(raw string) (Observation, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return Observation{}, ErrEmptyPayload
	}

	for _, r := range c.recognizers {
		res := r.recognize(payload)
		switch res.outcome {
		case notApplicable:
			continue
		case invalid:
			return Observation{}, fmt.Errorf("%s: %w", r.shape, res.err)
		}
		if res.obs.Category == "" {
			return Observation{}, fmt.Errorf("%s: %w: no category derived", r.shape, ErrPayloadMalformed)
		}
		return res.obs, nil
	}

	return Observation{}, ErrPayloadUnrecognized
}

func recognizeSentinel(payload string) recognition {
	cat, ok := sentinels[payload]
	if !ok {
		return notApplicableResult()
	}
	return matchedResult(Observation{
		Category:    cat,
		Temperature: MidpointTemperature(cat, DefaultTemperature),
	})
}

// recognizePair handles "<category>-<temperature>". The temperature may carry
// its own sign ("snow--3"); any further separator means the payload is not a
// pair.
func recognizePair(payload string) recognition {
	if strings.HasPrefix(payload, "{") || strings.HasPrefix(payload, "[") {
		return notApplicableResult()
	}
	catTok, tempTok, ok := strings.Cut(payload, pairSeparator)
	if !ok {
		return notApplicableResult()
	}
	catTok = strings.TrimSpace(catTok)
	tempTok = strings.TrimSpace(tempTok)

	unsigned := strings.TrimPrefix(strings.TrimPrefix(tempTok, "+"), "-")
	if strings.Contains(unsigned, pairSeparator) {
		return notApplicableResult()
	}

	if catTok == "" {
		return invalidResult("empty category in %q", payload)
	}
	if tempTok == "" {
		return invalidResult("empty temperature in %q", payload)
	}
	temp, err := strconv.Atoi(tempTok)
	if err != nil {
		return invalidResult("temperature %q is not an integer", tempTok)
	}
	return matchedResult(Observation{Category: Category(catTok), Temperature: temp})
}

// recognizeRecord handles JSON objects with optional "motion" and "temp" fields.
func recognizeRecord(payload string) recognition {
	rec, ok := decodeObject(payload)
	if !ok {
		return notApplicableResult()
	}

	cat, _ := motionCategory(rec["motion"])

	value, ok := recordTemperature(rec["temp"])
	if !ok {
		base := cat
		if base == "" {
			base = CategorySun
		}
		return matchedResult(Observation{Category: cat, Temperature: MidpointTemperature(base, DefaultTemperature)})
	}
	if value < math.MinInt || value >= math.MaxInt {
		return invalidResult("temperature %g out of range", value)
	}
	return matchedResult(Observation{Category: cat, Temperature: int(value)})
}

// decodeObject parses payload as exactly one JSON object.
func decodeObject(payload string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var rec map[string]any
	if err := dec.Decode(&rec); err != nil || rec == nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return rec, true
}

// motionCategory interprets a boolean-like motion flag.
func motionCategory(v any) (Category, bool) {
	switch m := v.(type) {
	case bool:
		return categoryForMotion(m), true
	case json.Number:
		f, err := strconv.ParseFloat(m.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return "", false
		}
		return categoryForMotion(f != 0), true
	case string:
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "1", "true", "yes", "on":
			return CategoryStorm, true
		case "0", "false", "no", "off", "":
			return CategorySun, true
		}
	}
	return "", false
}

func categoryForMotion(motion bool) Category {
	if motion {
		return CategoryStorm
	}
	return CategorySun
}

// recordTemperature returns the truncated temperature when v is a finite number.
func recordTemperature(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return math.Trunc(f), true
}
