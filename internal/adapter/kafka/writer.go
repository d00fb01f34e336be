// Package kafka publishes assembled features to a Kafka topic, for
// deployments that fan alert features out to downstream consumers instead of
// posting them straight to a mapping server.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cap-alert-etl/internal/config"
	"github.com/couchcryptid/cap-alert-etl/internal/domain"
)

// Writer produces feature messages to a Kafka topic.
// It implements pipeline.Submitter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Submit serializes and publishes every feature in the collection, one
// message per feature, in a single WriteMessages call for efficiency.
func (w *Writer) Submit(ctx context.Context, collection domain.FeatureCollection) error {
	if len(collection.Features) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(collection.Features))
	for i := range collection.Features {
		msg, err := serializeToMessage(collection.Features[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a feature into a Kafka message keyed by feature
// id so per-alert updates land in order on one partition.
func serializeToMessage(feature domain.Feature) (kafkago.Message, error) {
	data, err := json.Marshal(feature)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feature: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(feature.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event", Value: []byte(feature.Properties.Metadata.Event)},
			{Key: "category", Value: []byte(feature.Properties.Metadata.Category)},
			{Key: "processed_at", Value: []byte(feature.Properties.Metadata.ProcessedAt)},
		},
	}, nil
}
