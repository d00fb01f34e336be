//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkaadapter "github.com/couchcryptid/cap-alert-etl/internal/adapter/kafka"
	"github.com/couchcryptid/cap-alert-etl/internal/config"
	"github.com/couchcryptid/cap-alert-etl/internal/domain"
	"github.com/couchcryptid/cap-alert-etl/internal/observability"
	"github.com/couchcryptid/cap-alert-etl/internal/pipeline"
)

const testSinkTopic = "test-features"

const circleAlertDoc = `<?xml version="1.0" encoding="UTF-8"?>
<alert xmlns="urn:oasis:names:tc:emergency:cap:1.2">
  <identifier>NZ.2024.0300</identifier>
  <sender>alerts@metservice.com</sender>
  <sent>2024-06-01T09:30:00+12:00</sent>
  <status>Actual</status>
  <msgType>Alert</msgType>
  <scope>Public</scope>
  <info>
    <category>Met</category>
    <event>heavyRain</event>
    <urgency>Expected</urgency>
    <severity>Moderate</severity>
    <certainty>Likely</certainty>
    <headline>Heavy Rain Warning</headline>
    <area>
      <areaDesc>Wellington</areaDesc>
      <circle>-41.0,174.0 25.0</circle>
    </area>
  </info>
</alert>`

type memoryFetcher struct {
	feed   string
	alerts map[string]string
}

func (m *memoryFetcher) FetchFeed(_ context.Context) (string, error) { return m.feed, nil }

func (m *memoryFetcher) FetchAlert(_ context.Context, url string) (string, error) {
	doc, ok := m.alerts[url]
	if !ok {
		return "", fmt.Errorf("no such alert: %s", url)
	}
	return doc, nil
}

// readFeature reads one message from the sink topic and deserializes it.
func readFeature(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (domain.Feature, kafkago.Message) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	var feature domain.Feature
	require.NoError(t, json.Unmarshal(msg.Value, &feature), "unmarshal sink message")
	return feature, msg
}

func headerMap(msg kafkago.Message) map[string]string {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}

// TestKafkaWriterRoundTrip verifies that assembled features survive the trip
// through a real broker with their keys, headers, and geometry intact.
func TestKafkaWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	alert := domain.ParseAlert(circleAlertDoc)
	require.NotNil(t, alert)
	features, err := domain.BuildFeatures(alert)
	require.NoError(t, err)
	require.Len(t, features, 1)

	collection := domain.NewFeatureCollection()
	collection.Features = features

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.Submit(ctx, collection))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	feature, msg := readFeature(ctx, t, consumer)
	assert.Equal(t, "NZ.2024.0300", string(msg.Key))
	assert.Equal(t, "NZ.2024.0300", feature.ID)
	assert.Equal(t, domain.GeometryPoint, feature.Geometry.Type)
	assert.Equal(t, []float64{174.0, -41.0}, feature.Geometry.Point)
	assert.Equal(t, "Heavy Rain Warning", feature.Properties.Name)

	headers := headerMap(msg)
	assert.Equal(t, "heavyRain", headers["event"])
	assert.Equal(t, "Met", headers["category"])
	_, err = time.Parse(time.RFC3339, headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")
}

// TestPipelineToKafka wires an in-memory feed through the full pipeline with
// the Kafka sink and verifies the fan-out arrives on the topic.
func TestPipelineToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	url := "https://alerts.example.com/cap/NZ.2024.0300.xml"
	fetcher := &memoryFetcher{
		feed:   "<rss><channel><item><link>" + url + "</link></item></channel></rss>",
		alerts: map[string]string{url: circleAlertDoc},
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(fetcher, pipeline.NewTransformer(discardLogger()), writer, discardLogger(), metrics, time.Minute)

	require.NoError(t, p.RunCycle(ctx))
	assert.NoError(t, p.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	feature, msg := readFeature(ctx, t, consumer)
	assert.Equal(t, "NZ.2024.0300", string(msg.Key))
	assert.Equal(t, "NZ.2024.0300", feature.ID)
	assert.Contains(t, feature.Properties.Remarks, "Category: Meteorological")

	summary := p.LastCycle()
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.AlertsProcessed)
	assert.Equal(t, 1, summary.FeaturesSubmitted)
}
