package domain

import (
	"strconv"
	"strings"
)

const (
	tokenPrefix     = "MSG"
	tokenSeparator  = "|"
	detailPrefix    = "HEURE_"
	detailNA        = "DETAIL_NA"
	phraseSeparator = " - "
)

// Decoded is a token split into its readable parts.
type Decoded struct {
	Raw     string `json:"raw"`
	Keyword string `json:"keyword"`
	Detail  string `json:"detail"`
	Meaning string `json:"meaning"`
}

// Encode derives the side-channel token for an observation.
func Encode(obs Observation) string {
	return tokenPrefix + tokenSeparator + obs.Category.Keyword() + tokenSeparator +
		encodeDetail(strconv.Itoa(obs.Temperature))
}

// encodeDetail builds HEURE_<n> from every ASCII digit in text, dropping signs
// and separators. Text without digits yields DETAIL_NA.
func encodeDetail(text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return detailNA
	}
	return detailPrefix + strconv.FormatUint(n, 10)
}

// Decode returns the readable phrase for token, or false when the token has
// fewer than three segments.
func Decode(token string) (string, bool) {
	d, ok := DecodeToken(token)
	if !ok {
		return "", false
	}
	return d.Meaning, true
}

// DecodeToken splits token into keyword and detail. Segments past the third
// are ignored.
func DecodeToken(token string) (Decoded, bool) {
	if token == "" {
		return Decoded{}, false
	}
	parts := strings.Split(token, tokenSeparator)
	if len(parts) < 3 {
		return Decoded{}, false
	}
	keyword := strings.ReplaceAll(parts[1], "_", " ")
	detail := strings.ReplaceAll(parts[2], "_", " ")
	return Decoded{
		Raw:     token,
		Keyword: keyword,
		Detail:  detail,
		Meaning: keyword + phraseSeparator + detail,
	}, true
}
