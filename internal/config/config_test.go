package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFeedURL   = "https://alerts.example.nz/feed.rss"
	testSubmitURL = "https://tak.example.nz/api/markers"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("SUBMIT_URL", testSubmitURL)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testFeedURL, cfg.FeedURL)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, uint64(3), cfg.FetchMaxRetries)
	assert.Equal(t, 1000, cfg.FetchCacheSize)
	assert.Equal(t, SinkHTTP, cfg.Sink)
	assert.Equal(t, testSubmitURL, cfg.SubmitURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_MAX_RETRIES", "6")
	t.Setenv("FETCH_CACHE_SIZE", "250")
	t.Setenv("SUBMIT_TOKEN", "tok-123")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, uint64(6), cfg.FetchMaxRetries)
	assert.Equal(t, 250, cfg.FetchCacheSize)
	assert.Equal(t, "tok-123", cfg.SubmitToken)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_KafkaSink(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)
	t.Setenv("SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "features")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SinkKafka, cfg.Sink)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "features", cfg.KafkaSinkTopic)
}

func TestLoad_MissingFeedURL(t *testing.T) {
	t.Setenv("SUBMIT_URL", testSubmitURL)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_URL")
}

func TestLoad_HTTPSinkRequiresSubmitURL(t *testing.T) {
	t.Setenv("FEED_URL", testFeedURL)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBMIT_URL")
}

func TestLoad_InvalidSink(t *testing.T) {
	setRequired(t)
	t.Setenv("SINK", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SINK")
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "-1m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}
