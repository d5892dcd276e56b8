package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/google/uuid"
)

// Transport names accepted by TRANSPORT.
const (
	TransportMQTT  = "mqtt"
	TransportNATS  = "nats"
	TransportKafka = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Transport string

	// MQTT subscriber configuration.
	MQTTBrokerURL    string
	MQTTTopic        string
	MQTTClientID     string
	MQTTQoS          byte
	MQTTPublishTopic string

	// NATS subscriber configuration.
	NatsURL            string
	NatsToken          string
	NatsSubject        string
	NatsPublishSubject string

	// Kafka consumer configuration. An empty sink topic disables publishing.
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RevealPassphrase string
	RevealRateLimit  int

	DefaultCategory    string
	DefaultTemperature int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	qos, err := parseQoS(sharedcfg.EnvOrDefault("MQTT_QOS", "0"))
	if err != nil {
		return nil, err
	}

	rateLimit, err := parsePositiveInt("REVEAL_RATE_LIMIT", sharedcfg.EnvOrDefault("REVEAL_RATE_LIMIT", "10"))
	if err != nil {
		return nil, err
	}

	defaultTemp, err := strconv.Atoi(sharedcfg.EnvOrDefault("DEFAULT_TEMPERATURE", "25"))
	if err != nil {
		return nil, errors.New("invalid DEFAULT_TEMPERATURE")
	}

	cfg := &Config{
		Transport: sharedcfg.EnvOrDefault("TRANSPORT", TransportMQTT),

		MQTTBrokerURL:    sharedcfg.EnvOrDefault("MQTT_BROKER_URL", "ws://broker.hivemq.com:8000/mqtt"),
		MQTTTopic:        sharedcfg.EnvOrDefault("MQTT_TOPIC", "home/esp32s3/pir/mouvement"),
		MQTTClientID:     sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "meteo-relay-"+uuid.NewString()[:8]),
		MQTTQoS:          qos,
		MQTTPublishTopic: os.Getenv("MQTT_PUBLISH_TOPIC"),

		NatsURL:            sharedcfg.EnvOrDefault("NATS_URL", "nats://localhost:4222"),
		NatsToken:          os.Getenv("NATS_TOKEN"),
		NatsSubject:        sharedcfg.EnvOrDefault("NATS_SUBJECT", "home.esp32s3.pir.mouvement"),
		NatsPublishSubject: os.Getenv("NATS_PUBLISH_SUBJECT"),

		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "sensor-telemetry"),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "weather-observations"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "meteo-relay"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RevealPassphrase: sharedcfg.EnvOrDefault("REVEAL_PASSPHRASE", "Q-KEY"),
		RevealRateLimit:  rateLimit,

		DefaultCategory:    sharedcfg.EnvOrDefault("DEFAULT_CATEGORY", "sun"),
		DefaultTemperature: defaultTemp,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Transport {
	case TransportMQTT:
		if c.MQTTBrokerURL == "" {
			return errors.New("MQTT_BROKER_URL is required")
		}
		if c.MQTTTopic == "" {
			return errors.New("MQTT_TOPIC is required")
		}
	case TransportNATS:
		if c.NatsURL == "" {
			return errors.New("NATS_URL is required")
		}
		if c.NatsSubject == "" {
			return errors.New("NATS_SUBJECT is required")
		}
	case TransportKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	default:
		return fmt.Errorf("invalid TRANSPORT %q: want mqtt, nats or kafka", c.Transport)
	}
	if c.RevealPassphrase == "" {
		return errors.New("REVEAL_PASSPHRASE must not be empty")
	}
	return nil
}

func parseQoS(s string) (byte, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 2 {
		return 0, errors.New("invalid MQTT_QOS: must be 0, 1 or 2")
	}
	return byte(n), nil
}

func parsePositiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}
