package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/couchcryptid/meteo-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	input := strings.Join([]string{
		"MOUVEMENT",
		"rain-12",
		`{"motion":false,"temp":-3.7}`,
		"",
		"snow-abc",
		"hello",
	}, "\n")

	var out bytes.Buffer
	rejected, err := run(strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, 3, rejected)

	var results []result
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r result
		require.NoError(t, dec.Decode(&r))
		results = append(results, r)
	}
	require.Len(t, results, 6)

	assert.Equal(t, domain.Observation{Category: domain.CategoryStorm, Temperature: 23}, *results[0].Observation)
	assert.Equal(t, "MSG|ATTENTION|HEURE_23", results[0].Token)
	assert.Equal(t, "ATTENTION - HEURE 23", results[0].Meaning)

	assert.Equal(t, "MSG|RENFORT|HEURE_12", results[1].Token)

	assert.Equal(t, domain.Observation{Category: domain.CategorySun, Temperature: -3}, *results[2].Observation)

	assert.Equal(t, "empty", results[3].Reject)
	assert.Equal(t, "malformed", results[4].Reject)
	assert.Equal(t, "unrecognized", results[5].Reject)
	assert.Nil(t, results[5].Observation)
	assert.Equal(t, 6, results[5].Line)
}

func TestListShapes(t *testing.T) {
	var out bytes.Buffer
	listShapes(domain.NewClassifier(), &out)
	assert.Equal(t, "1. sentinel\n2. pair\n3. record\n", out.String())
}
