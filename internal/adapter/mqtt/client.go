// Package mqtt connects the relay to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/config"
	"github.com/couchcryptid/meteo-relay/internal/domain"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// ConnectionObserver is notified when the broker connection goes up or down.
type ConnectionObserver func(connected bool)

// Client subscribes to sensor payloads and optionally publishes observations.
// It implements pipeline.Publisher when a publish topic is configured.
type Client struct {
	client       pahomqtt.Client
	topic        string
	qos          byte
	publishTopic string
	logger       *slog.Logger

	mu      sync.Mutex
	handler func(domain.RawMessage)
}

// NewClient configures a paho client with auto-reconnect. The topic is
// re-subscribed on every (re)connect once Subscribe has been called.
func NewClient(cfg *config.Config, logger *slog.Logger, observe ConnectionObserver) *Client {
	c := &Client{
		topic:        cfg.MQTTTopic,
		qos:          cfg.MQTTQoS,
		publishTopic: cfg.MQTTPublishTopic,
		logger:       logger,
	}
	if observe == nil {
		observe = func(bool) {}
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(cfg.MQTTClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second).
		SetMaxReconnectInterval(30 * time.Second).
		SetOrderMatters(true).
		SetOnConnectHandler(func(pc pahomqtt.Client) {
			logger.Info("mqtt connected", "broker", cfg.MQTTBrokerURL)
			observe(true)
			c.resubscribe(pc)
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
			observe(false)
		})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Connect starts the connection. With connect-retry enabled paho keeps trying
// in the background, so a timeout here is logged rather than fatal.
func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()
	if err := waitToken(ctx, token); err != nil {
		if errors.Is(err, errTokenTimeout) {
			c.logger.Warn("mqtt connect still pending, retrying in background")
			return nil
		}
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Subscribe registers handler for every payload on the configured topic.
func (c *Client) Subscribe(handler func(domain.RawMessage)) error {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	if !c.client.IsConnectionOpen() {
		// The on-connect handler subscribes once the broker is reachable.
		return nil
	}
	return c.subscribe(c.client)
}

// Publish sends a publication as JSON to the publish topic.
func (c *Client) Publish(ctx context.Context, pub domain.Publication) error {
	if c.publishTopic == "" {
		return nil
	}
	payload, err := json.Marshal(pub)
	if err != nil {
		return fmt.Errorf("marshal publication: %w", err)
	}
	token := c.client.Publish(c.publishTopic, c.qos, false, payload)
	if err := waitToken(ctx, token); err != nil {
		return fmt.Errorf("publish %s: %w", c.publishTopic, err)
	}
	return nil
}

// Close unsubscribes and disconnects.
func (c *Client) Close() {
	if c.client.IsConnectionOpen() {
		c.client.Unsubscribe(c.topic).WaitTimeout(time.Second)
	}
	c.client.Disconnect(disconnectQuiesce)
}

func (c *Client) resubscribe(pc pahomqtt.Client) {
	c.mu.Lock()
	hasHandler := c.handler != nil
	c.mu.Unlock()
	if !hasHandler {
		return
	}
	if err := c.subscribe(pc); err != nil {
		c.logger.Error("mqtt resubscribe failed", "topic", c.topic, "error", err)
	}
}

func (c *Client) subscribe(pc pahomqtt.Client) error {
	token := pc.Subscribe(c.topic, c.qos, c.onMessage)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("subscribe %s: %w", c.topic, errTokenTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}
	c.logger.Info("subscribed", "topic", c.topic, "qos", c.qos)
	return nil
}

func (c *Client) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler == nil {
		return
	}
	handler(mapMessage(msg))
}

// mapMessage converts a paho delivery into a domain.RawMessage.
func mapMessage(msg pahomqtt.Message) domain.RawMessage {
	raw := domain.NewRawMessage(msg.Topic(), msg.Payload())
	raw.Headers = map[string]string{
		"qos":      fmt.Sprint(msg.Qos()),
		"retained": fmt.Sprint(msg.Retained()),
	}
	return raw
}

var errTokenTimeout = errors.New("timed out waiting for broker")

// waitToken blocks until token completes, ctx ends or connectTimeout elapses.
func waitToken(ctx context.Context, token pahomqtt.Token) error {
	timer := time.NewTimer(connectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errTokenTimeout
	}
}
