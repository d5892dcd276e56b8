package domain

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		obs      Observation
		expected string
	}{
		{"rain", Observation{CategoryRain, 12}, "MSG|RENFORT|HEURE_12"},
		{"sun", Observation{CategorySun, 25}, "MSG|MISSION_OK|HEURE_25"},
		{"negative drops sign", Observation{CategorySnow, -3}, "MSG|REPLIEZ|HEURE_3"},
		{"zero", Observation{CategorySnow, 0}, "MSG|REPLIEZ|HEURE_0"},
		{"unknown category", Observation{Category("fog"), 8}, "MSG|INCONNU|HEURE_8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Encode(tt.obs))
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	obs := Observation{CategoryStorm, 27}
	assert.Equal(t, Encode(obs), Encode(obs))
}

func TestEncodeDetail(t *testing.T) {
	assert.Equal(t, "HEURE_23", encodeDetail("23°C"))
	assert.Equal(t, "HEURE_7", encodeDetail("-007"))
	assert.Equal(t, "HEURE_125", encodeDetail("1.25"))
	assert.Equal(t, "DETAIL_NA", encodeDetail("abc"))
	assert.Equal(t, "DETAIL_NA", encodeDetail(""))
}

func TestDecode(t *testing.T) {
	phrase, ok := Decode("MSG|RENFORT|HEURE_12")
	require.True(t, ok)
	assert.Equal(t, "RENFORT - HEURE 12", phrase)

	phrase, ok = Decode("MSG|MISSION_OK|DETAIL_NA|extra")
	require.True(t, ok)
	assert.Equal(t, "MISSION OK - DETAIL NA", phrase)
}

func TestDecode_Invalid(t *testing.T) {
	for _, token := range []string{"", "garbage", "MSG|ONLY_TWO"} {
		_, ok := Decode(token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestDecodeToken(t *testing.T) {
	d, ok := DecodeToken("MSG|MISSION_OK|HEURE_30")
	require.True(t, ok)
	assert.Equal(t, Decoded{
		Raw:     "MSG|MISSION_OK|HEURE_30",
		Keyword: "MISSION OK",
		Detail:  "HEURE 30",
		Meaning: "MISSION OK - HEURE 30",
	}, d)
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, cat := range append(Categories(), "fog") {
		for _, temp := range []int{-12, 0, 9, 23, 104} {
			obs := Observation{Category: cat, Temperature: temp}
			d, ok := DecodeToken(Encode(obs))
			require.True(t, ok)

			digits := strings.TrimPrefix(strconv.Itoa(temp), "-")
			assert.Equal(t, strings.ReplaceAll(cat.Keyword(), "_", " "), d.Keyword)
			assert.Contains(t, d.Meaning, strings.ReplaceAll(cat.Keyword(), "_", " "))
			assert.Contains(t, d.Meaning, "HEURE "+digits)
		}
	}
}
