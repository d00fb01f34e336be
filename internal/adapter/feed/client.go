// Package feed fetches the CAP feed and its alert documents over HTTP with
// retries and a circuit breaker, so a flaky upstream degrades one cycle
// instead of hammering the feed host.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/cap-alert-etl/internal/config"
)

// ErrUpstreamUnavailable is returned while the circuit breaker is open.
var ErrUpstreamUnavailable = errors.New("feed upstream unavailable")

// maxDocumentSize bounds feed and alert document reads.
const maxDocumentSize = 10 << 20

// AlertSource fetches the feed document and individual alert documents.
type AlertSource interface {
	FetchFeed(ctx context.Context) (string, error)
	FetchAlert(ctx context.Context, url string) (string, error)
}

// Client is a resilient HTTP fetcher for the feed host. Transient failures
// (network errors, 5xx) are retried with exponential backoff; repeated
// failures open a circuit breaker shared across feed and alert fetches.
type Client struct {
	feedURL       string
	httpClient    *http.Client
	breaker       *gobreaker.CircuitBreaker[[]byte]
	maxRetries    uint64
	retryInterval time.Duration
	logger        *slog.Logger
}

// NewClient creates a fetcher for the configured feed.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "cap-feed",
		Timeout: 60 * time.Second,
	})
	return &Client{
		feedURL:       cfg.FeedURL,
		httpClient:    &http.Client{Timeout: cfg.FetchTimeout},
		breaker:       breaker,
		maxRetries:    cfg.FetchMaxRetries,
		retryInterval: 200 * time.Millisecond,
		logger:        logger,
	}
}

// FetchFeed retrieves the raw feed text.
func (c *Client) FetchFeed(ctx context.Context) (string, error) {
	return c.get(ctx, c.feedURL)
}

// FetchAlert retrieves one alert document by URL.
func (c *Client) FetchAlert(ctx context.Context, url string) (string, error) {
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxElapsedTime = 0 // retries bounded by maxRetries, not wall time
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)

	body, err := backoff.RetryWithData(func() ([]byte, error) {
		data, err := c.breaker.Execute(func() ([]byte, error) {
			return c.doRequest(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(ErrUpstreamUnavailable)
			}
			var statusErr *statusError
			if errors.As(err, &statusErr) && statusErr.Code < 500 {
				// 4xx will not heal on retry.
				return nil, backoff.Permanent(err)
			}
			c.logger.Debug("fetch retrying", "url", url, "error", err)
			return nil, err
		}
		return data, nil
	}, policy)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return string(body), nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, application/rss+xml, application/atom+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse
		return nil, &statusError{Code: resp.StatusCode}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
