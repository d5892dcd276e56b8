package domain

import "errors"

// Classification failures. All are recoverable: the payload is dropped and
// the next delivery is processed normally.
var (
	ErrEmptyPayload        = errors.New("empty payload")
	ErrPayloadUnrecognized = errors.New("payload unrecognized")
	ErrPayloadMalformed    = errors.New("payload malformed")
)

// Reveal failures, surfaced to the user as messages.
var (
	ErrAccessDenied  = errors.New("access denied")
	ErrNothingToShow = errors.New("nothing to show")
)

// RejectReason maps a classification error to a short label for logs and
// metrics. Unknown errors map to "error".
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyPayload):
		return "empty"
	case errors.Is(err, ErrPayloadUnrecognized):
		return "unrecognized"
	case errors.Is(err, ErrPayloadMalformed):
		return "malformed"
	default:
		return "error"
	}
}
