package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/meteo-relay/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/meteo-relay/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/meteo-relay/internal/adapter/mqtt"
	natsadapter "github.com/couchcryptid/meteo-relay/internal/adapter/nats"
	"github.com/couchcryptid/meteo-relay/internal/config"
	"github.com/couchcryptid/meteo-relay/internal/display"
	"github.com/couchcryptid/meteo-relay/internal/domain"
	"github.com/couchcryptid/meteo-relay/internal/observability"
	"github.com/couchcryptid/meteo-relay/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	observeConn := func(connected bool) {
		if connected {
			metrics.TransportConnected.Set(1)
			return
		}
		metrics.TransportConnected.Set(0)
	}

	initial := domain.Observation{
		Category:    domain.Category(cfg.DefaultCategory),
		Temperature: cfg.DefaultTemperature,
	}
	board := display.NewBoard(initial, display.WithObserver(func(s display.State) {
		metrics.DisplayTemperature.Set(float64(s.Temperature))
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		publisher pipeline.Publisher
		closers   []io.Closer
		start     func(p *pipeline.Pipeline) error
	)

	switch cfg.Transport {
	case config.TransportMQTT:
		client := mqttadapter.NewClient(cfg, logger.With("component", "mqtt"), observeConn)
		if cfg.MQTTPublishTopic != "" {
			publisher = client
		}
		closers = append(closers, closerFunc(client.Close))
		start = func(p *pipeline.Pipeline) error {
			if err := client.Connect(ctx); err != nil {
				return err
			}
			if err := client.Subscribe(p.Handler(ctx)); err != nil {
				return err
			}
			p.MarkReady()
			return nil
		}

	case config.TransportNATS:
		client, err := natsadapter.NewClient(cfg.NatsURL, cfg.NatsToken, cfg.NatsPublishSubject,
			logger.With("component", "nats"), observeConn)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		if cfg.NatsPublishSubject != "" {
			publisher = client
		}
		closers = append(closers, closerFunc(client.Close))
		start = func(p *pipeline.Pipeline) error {
			if err := client.Subscribe(cfg.NatsSubject, p.Handler(ctx)); err != nil {
				return err
			}
			p.MarkReady()
			return nil
		}

	case config.TransportKafka:
		reader := kafkaadapter.NewReader(cfg, logger.With("component", "kafka"))
		closers = append(closers, reader)
		if cfg.KafkaSinkTopic != "" {
			writer := kafkaadapter.NewWriter(cfg, logger.With("component", "kafka"))
			publisher = writer
			closers = append(closers, writer)
		}
		start = func(p *pipeline.Pipeline) error {
			observeConn(true)
			go func() {
				if err := p.Run(ctx, reader); err != nil {
					logger.Error("pipeline error", "error", err)
				}
			}()
			return nil
		}
	}

	gate := domain.NewGate(cfg.RevealPassphrase)
	p := pipeline.New(domain.NewClassifier(), board, publisher, gate,
		logger.With("component", "pipeline"), metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Ready:       p,
		Display:     board,
		Reveal:      p,
		RevealLimit: cfg.RevealRateLimit,
	}, logger.With("component", "http"))

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the transport.
	if err := start(p); err != nil {
		logger.Error("failed to start transport", "transport", cfg.Transport, "error", err)
		stop()
	} else {
		logger.Info("relay started", "transport", cfg.Transport,
			"publishing", publisher != nil, "display", board.Snapshot().Label)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Error("transport close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// closerFunc adapts a no-error Close method to io.Closer.
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
