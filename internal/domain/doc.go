// Package domain models sensor telemetry as weather observations and the
// obfuscated side-channel token derived from each observation.
//
// # Data Source
//
// Payloads come from an ESP32 PIR/temperature node that publishes to an MQTT
// topic (home/esp32s3/pir/mouvement by default). The same payloads can be
// bridged to NATS or Kafka. Firmware revisions disagree on the wire shape, so
// a single topic carries three encodings:
//
//	Sentinel tokens:   "MOUVEMENT" | "PAS_DE_MOUVEMENT"
//	Delimited pair:    "<category>-<temperature>"   e.g. "rain-12", "snow--3"
//	Structured record: {"motion": 1, "temp": 23.7}
//
// # Classification
//
// Shapes are tried in that order and the first recognizer that applies
// decides the outcome. See [Classifier]. Sentinels and records without a
// temperature fall back to the midpoint of the category's range in the
// [Catalog] (rounded half up). The pair shape keeps its category token
// verbatim: an unknown category such as "fog-8" is accepted here and left to
// the display and the codec to default.
//
// Numeric semantics differ per shape. Pair temperatures must be base-10
// signed integers. Record temperatures are JSON numbers truncated toward zero.
//
// # Tokens
//
// Every accepted observation yields a token of the form
//
//	MSG|<KEYWORD>|HEURE_<digits of temperature>
//
// e.g. {rain, 12} -> "MSG|RENFORT|HEURE_12". Decoding replaces underscores
// with spaces and joins the two data segments: "RENFORT - HEURE 12". Decoding
// is a display transform only; the sign of the temperature is not recoverable.
//
// Decoded phrases are only released through a [Gate] holding the shared
// passphrase.
package domain
