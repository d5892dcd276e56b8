// Package nats connects the relay to a NATS server.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/domain"
	natsgo "github.com/nats-io/nats.go"
)

// Client subscribes to sensor payloads and publishes observations.
// It implements pipeline.Publisher when a publish subject is set.
type Client struct {
	conn           *natsgo.Conn
	subs           []*natsgo.Subscription
	publishSubject string
	logger         *slog.Logger
}

// NewClient connects to url. An empty token connects anonymously.
// observe, if non-nil, is told about connection state changes.
func NewClient(url, token, publishSubject string, logger *slog.Logger, observe func(connected bool)) (*Client, error) {
	if observe == nil {
		observe = func(bool) {}
	}
	opts := []natsgo.Option{
		natsgo.Name("meteo-relay"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(60),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.ConnectHandler(func(_ *natsgo.Conn) {
			observe(true)
		}),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			observe(false)
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(_ *natsgo.Conn) {
			observe(true)
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, natsgo.Token(token))
	}

	nc, err := natsgo.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if nc.IsConnected() {
		observe(true)
	}

	return &Client{conn: nc, publishSubject: publishSubject, logger: logger}, nil
}

// Subscribe delivers every message on subject to handler. NATS invokes the
// handler serially for a single subscription.
func (c *Client) Subscribe(subject string, handler func(domain.RawMessage)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *natsgo.Msg) {
		handler(mapMessage(msg))
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Publish sends pub as JSON to the publish subject.
func (c *Client) Publish(_ context.Context, pub domain.Publication) error {
	if c.publishSubject == "" {
		return nil
	}
	payload, err := encodePublication(pub)
	if err != nil {
		return err
	}
	return c.conn.Publish(c.publishSubject, payload)
}

// Close unsubscribes every subscription and closes the connection.
func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}

func encodePublication(pub domain.Publication) ([]byte, error) {
	payload, err := json.Marshal(pub)
	if err != nil {
		return nil, fmt.Errorf("marshal publication: %w", err)
	}
	return payload, nil
}

func mapMessage(msg *natsgo.Msg) domain.RawMessage {
	raw := domain.NewRawMessage(msg.Subject, msg.Data)
	if len(msg.Header) > 0 {
		raw.Headers = make(map[string]string, len(msg.Header))
		for k := range msg.Header {
			raw.Headers[k] = msg.Header.Get(k)
		}
	}
	return raw
}
