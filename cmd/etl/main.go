package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cap-alert-etl/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/cap-alert-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cap-alert-etl/internal/adapter/kafka"
	"github.com/couchcryptid/cap-alert-etl/internal/adapter/tak"
	"github.com/couchcryptid/cap-alert-etl/internal/config"
	"github.com/couchcryptid/cap-alert-etl/internal/observability"
	"github.com/couchcryptid/cap-alert-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := feed.NewClient(cfg, logger)
	fetcher := feed.NewCachedFetcher(client, cfg.FetchCacheSize, metrics)

	var submitter pipeline.Submitter
	var closeSink func() error
	switch cfg.Sink {
	case config.SinkKafka:
		writer := kafkaadapter.NewWriter(cfg, logger)
		submitter = writer
		closeSink = writer.Close
		logger.Info("kafka sink configured", "topic", cfg.KafkaSinkTopic)
	default:
		submitter = tak.NewClient(cfg, logger)
		logger.Info("http sink configured", "url", cfg.SubmitURL)
	}

	transformer := pipeline.NewTransformer(logger)
	p := pipeline.New(fetcher, transformer, submitter, logger, metrics, cfg.PollInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closeSink != nil {
		if err := closeSink(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
