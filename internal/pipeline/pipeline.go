package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/meteo-relay/internal/domain"
	"github.com/couchcryptid/meteo-relay/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Extractor pulls one raw message at a time from a log-based source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawMessage, error)
}

// Classifier turns a payload into an observation.
type Classifier interface {
	Classify(raw string) (domain.Observation, error)
}

// Renderer presents an observation. Rendering the same observation twice
// must leave the same visible state.
type Renderer interface {
	Render(obs domain.Observation)
}

// Publisher forwards accepted observations downstream.
type Publisher interface {
	Publish(ctx context.Context, pub domain.Publication) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline is the running relay session. It owns the latest token and the
// reveal gate for the lifetime of the process.
type Pipeline struct {
	classifier Classifier
	renderer   Renderer
	publisher  Publisher
	gate       *domain.Gate
	tokens     TokenSlot
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// New creates a Pipeline. publisher may be nil to disable downstream publication.
func New(c Classifier, r Renderer, publisher Publisher, gate *domain.Gate, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		classifier: c,
		renderer:   r,
		publisher:  publisher,
		gate:       gate,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once the transport is subscribed or a payload
// has been accepted.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not subscribed or accepted a payload yet")
	}
	return nil
}

// MarkReady flags the pipeline as ready, typically after a push transport subscribes.
func (p *Pipeline) MarkReady() {
	p.ready.Store(true)
}

// Handler adapts OnPayload to the callback shape push transports expect.
func (p *Pipeline) Handler(ctx context.Context) func(domain.RawMessage) {
	return func(msg domain.RawMessage) {
		p.OnPayload(ctx, msg)
	}
}

// OnPayload is the inbound transport callback. Failures are logged and dropped.
func (p *Pipeline) OnPayload(ctx context.Context, msg domain.RawMessage) {
	_, _ = p.Process(ctx, msg)
}

// Process classifies msg and, on success, renders the observation, stores its
// token and publishes it. A rejected payload has no side effects beyond logs
// and metrics.
func (p *Pipeline) Process(ctx context.Context, msg domain.RawMessage) (domain.Observation, error) {
	p.metrics.PayloadsReceived.Inc()

	obs, err := p.classifier.Classify(string(msg.Value))
	if err != nil {
		p.reject(msg, err)
		return domain.Observation{}, err
	}

	p.renderer.Render(obs)
	token := domain.Encode(obs)
	p.tokens.Store(token)
	p.ready.Store(true)
	p.metrics.ObservationsAccepted.WithLabelValues(categoryLabel(obs.Category)).Inc()

	p.logger.Info("observation accepted",
		"message_id", msg.ID,
		"topic", msg.Topic,
		"category", obs.Category,
		"temperature", obs.Temperature,
	)

	p.publish(ctx, domain.NewPublication(msg, obs, token))
	return obs, nil
}

// LatestToken returns the token of the most recent accepted observation.
func (p *Pipeline) LatestToken() (string, bool) {
	return p.tokens.Load()
}

// AttemptReveal decodes the latest token when passphrase opens the gate.
// It returns domain.ErrAccessDenied or domain.ErrNothingToShow otherwise and
// never modifies the stored token.
func (p *Pipeline) AttemptReveal(passphrase string) (string, error) {
	if !p.gate.Unlock(passphrase) {
		p.metrics.RevealAttempts.WithLabelValues("denied").Inc()
		p.logger.Warn("reveal denied")
		return "", domain.ErrAccessDenied
	}
	p.logger.Debug("reveal gate opened", "state", p.gate.State())
	defer p.gate.Lock()

	token, ok := p.tokens.Load()
	if !ok {
		p.metrics.RevealAttempts.WithLabelValues("empty").Inc()
		return "", domain.ErrNothingToShow
	}
	phrase, ok := domain.Decode(token)
	if !ok {
		p.metrics.RevealAttempts.WithLabelValues("empty").Inc()
		return "", domain.ErrNothingToShow
	}

	p.metrics.RevealAttempts.WithLabelValues("revealed").Inc()
	p.logger.Info("message revealed")
	return phrase, nil
}

// Run pulls messages from ext until the context is cancelled. Every message
// is committed after processing, including rejected ones.
func (p *Pipeline) Run(ctx context.Context, ext Extractor) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		msg, err := ext.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("extract failed", "error", err)
			if !retry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		p.OnPayload(ctx, msg)
		p.commit(ctx, msg)
	}
}

func (p *Pipeline) reject(msg domain.RawMessage, err error) {
	reason := domain.RejectReason(err)
	p.metrics.PayloadsRejected.WithLabelValues(reason).Inc()

	attrs := []any{"message_id", msg.ID, "topic", msg.Topic, "reason", reason, "error", err}
	if errors.Is(err, domain.ErrPayloadMalformed) {
		p.logger.Warn("malformed payload dropped", attrs...)
		return
	}
	p.logger.Debug("payload ignored", attrs...)
}

func (p *Pipeline) publish(ctx context.Context, pub domain.Publication) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, pub); err != nil {
		p.metrics.Publications.WithLabelValues("error").Inc()
		p.logger.Warn("publish observation failed", "message_id", pub.MessageID, "error", err)
		return
	}
	p.metrics.Publications.WithLabelValues("success").Inc()
}

// commit acknowledges the message if the source supplied a commit function.
func (p *Pipeline) commit(ctx context.Context, msg domain.RawMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}

func categoryLabel(c domain.Category) string {
	if c.Known() {
		return string(c)
	}
	return "unknown"
}
