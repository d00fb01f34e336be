package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/cap-alert-etl/internal/domain"
	"github.com/couchcryptid/cap-alert-etl/internal/observability"
)

// Fetcher retrieves the feed document and individual alert documents.
type Fetcher interface {
	FetchFeed(ctx context.Context) (string, error)
	FetchAlert(ctx context.Context, url string) (string, error)
}

// Transformer converts one alert document into output features.
// A (nil, nil) result means the document is unusable and silently skipped.
type Transformer interface {
	Transform(ctx context.Context, doc string) ([]domain.Feature, error)
}

// Submitter delivers an assembled feature collection to the sink.
type Submitter interface {
	Submit(ctx context.Context, collection domain.FeatureCollection) error
}

// CycleSummary reports what one poll cycle did, for the status endpoint.
type CycleSummary struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	DurationSeconds   float64   `json:"duration_seconds"`
	LinksFound        int       `json:"links_found"`
	AlertsProcessed   int       `json:"alerts_processed"`
	AlertsSkipped     int       `json:"alerts_skipped"`
	FeaturesSubmitted int       `json:"features_submitted"`
}

// Pipeline orchestrates the poll-fetch-transform-submit loop. Alerts are
// processed strictly sequentially in feed order; each one is isolated so a
// single bad document never costs the cycle its remaining alerts.
type Pipeline struct {
	fetcher     Fetcher
	transformer Transformer
	submitter   Submitter
	logger      *slog.Logger
	metrics     *observability.Metrics
	interval    time.Duration
	ready       atomic.Bool
	lastCycle   atomic.Pointer[CycleSummary]
}

// New creates a Pipeline with the given stages and observability.
func New(f Fetcher, t Transformer, s Submitter, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:     f,
		transformer: t,
		submitter:   s,
		logger:      logger,
		metrics:     metrics,
		interval:    interval,
	}
}

// CheckReadiness returns nil once the pipeline has submitted at least one
// collection, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not submitted any features yet")
	}
	return nil
}

// LastCycle returns the most recent cycle summary, or nil before the first
// cycle completes.
func (p *Pipeline) LastCycle() *CycleSummary {
	return p.lastCycle.Load()
}

// Run executes poll cycles until the context is cancelled. A failed cycle
// (feed unreachable, sink down) is logged and retried on the next tick; the
// feed fetcher's own retry policy has already run its course by then.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "poll_interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		if err := p.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("cycle failed", "error", err)
		}

		if !sleepWithContext(ctx, p.interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// RunCycle performs one full fetch-transform-submit pass over the feed.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	start := time.Now()
	summary := CycleSummary{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
	}
	logger := p.logger.With("run_id", summary.RunID)

	p.metrics.FeedFetches.Inc()
	feed, err := p.fetcher.FetchFeed(ctx)
	if err != nil {
		p.metrics.FeedFetchErrors.Inc()
		return fmt.Errorf("fetch feed: %w", err)
	}

	links := domain.ExtractAlertLinks(feed)
	summary.LinksFound = len(links)
	p.metrics.LinksPerCycle.Observe(float64(len(links)))
	logger.Info("feed scanned", "links", len(links))

	collection := domain.NewFeatureCollection()
	for _, url := range links {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		features, ok := p.processAlert(ctx, logger, url)
		if !ok {
			summary.AlertsSkipped++
			continue
		}
		summary.AlertsProcessed++
		p.metrics.AlertsProcessed.Inc()
		p.metrics.FeaturesBuilt.Add(float64(len(features)))
		collection.Features = append(collection.Features, features...)
	}

	if len(collection.Features) > 0 {
		if err := p.submitter.Submit(ctx, collection); err != nil {
			p.metrics.SubmitErrors.Inc()
			return fmt.Errorf("submit %d features: %w", len(collection.Features), err)
		}
		p.metrics.FeaturesSubmitted.Add(float64(len(collection.Features)))
		p.ready.Store(true)
	} else {
		logger.Info("no features this cycle")
	}

	summary.FeaturesSubmitted = len(collection.Features)
	summary.DurationSeconds = time.Since(start).Seconds()
	p.metrics.CycleDuration.Observe(summary.DurationSeconds)
	p.lastCycle.Store(&summary)

	logger.Info("cycle complete",
		"alerts_processed", summary.AlertsProcessed,
		"alerts_skipped", summary.AlertsSkipped,
		"features_submitted", summary.FeaturesSubmitted,
	)
	return nil
}

// processAlert runs one isolated fetch-parse-assemble step. It returns
// ok=false for any skip: fetch failure, unusable document, or transform
// error. Failures are logged here and never propagate to the cycle.
func (p *Pipeline) processAlert(ctx context.Context, logger *slog.Logger, url string) ([]domain.Feature, bool) {
	doc, err := p.fetcher.FetchAlert(ctx, url)
	if err != nil {
		logger.Warn("alert fetch failed, skipping", "url", url, "error", err)
		p.metrics.AlertsSkipped.WithLabelValues("fetch").Inc()
		return nil, false
	}

	features, err := p.transformer.Transform(ctx, doc)
	if err != nil {
		logger.Warn("alert transform failed, skipping", "url", url, "error", err)
		p.metrics.AlertsSkipped.WithLabelValues("transform").Inc()
		return nil, false
	}
	if features == nil {
		logger.Debug("alert unusable, skipping", "url", url)
		p.metrics.AlertsSkipped.WithLabelValues("unusable").Inc()
		return nil, false
	}

	return features, true
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
