package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/cap-alert-etl/internal/domain"
)

// AlertTransformer converts CAP alert XML into map features.
type AlertTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an AlertTransformer.
func NewTransformer(logger *slog.Logger) *AlertTransformer {
	return &AlertTransformer{logger: logger}
}

// Transform parses one alert document and assembles its features. Documents
// that cannot be parsed into a usable alert yield (nil, nil); an alert that
// parses but cannot be assembled yields an error.
func (t *AlertTransformer) Transform(_ context.Context, doc string) ([]domain.Feature, error) {
	alert := domain.ParseAlert(doc)
	if alert == nil {
		return nil, nil
	}

	features, err := domain.BuildFeatures(alert)
	if err != nil {
		return nil, fmt.Errorf("build features for %s: %w", alert.Identifier, err)
	}

	t.logger.Debug("alert transformed",
		"identifier", alert.Identifier,
		"event", alert.Info.Event,
		"features", len(features),
	)
	return features, nil
}
