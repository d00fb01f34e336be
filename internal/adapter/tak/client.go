// Package tak submits feature collections to the mapping server's marker API.
package tak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cap-alert-etl/internal/config"
	"github.com/couchcryptid/cap-alert-etl/internal/domain"
)

// Client posts feature collections to the marker API endpoint.
type Client struct {
	submitURL  string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a submission client for the configured marker API.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		submitURL: cfg.SubmitURL,
		token:     cfg.SubmitToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Submit posts the whole collection in one request. Any non-2xx response is
// an error; the pipeline counts it and retries the whole cycle later.
func (c *Client) Submit(ctx context.Context, collection domain.FeatureCollection) error {
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("serialize feature collection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.submitURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit features: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("marker API error: status %d: %s", resp.StatusCode, body)
	}

	c.logger.Debug("collection submitted", "features", len(collection.Features))
	return nil
}
