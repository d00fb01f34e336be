package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Sink selects where assembled feature collections are submitted.
const (
	SinkHTTP  = "http"
	SinkKafka = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL         string
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	FetchMaxRetries uint64
	FetchCacheSize  int

	Sink        string
	SubmitURL   string
	SubmitToken string

	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedURL:         os.Getenv("FEED_URL"),
		PollInterval:    pollInterval,
		FetchTimeout:    fetchTimeout,
		FetchMaxRetries: parseCount("FETCH_MAX_RETRIES", 3),
		FetchCacheSize:  parseSize("FETCH_CACHE_SIZE", 1000),

		Sink:        sharedcfg.EnvOrDefault("SINK", SinkHTTP),
		SubmitURL:   os.Getenv("SUBMIT_URL"),
		SubmitToken: os.Getenv("SUBMIT_TOKEN"),

		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cap-alert-features"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	switch cfg.Sink {
	case SinkHTTP:
		if cfg.SubmitURL == "" {
			return nil, errors.New("SUBMIT_URL is required when SINK is http")
		}
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when SINK is kafka")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when SINK is kafka")
		}
	default:
		return nil, fmt.Errorf("invalid SINK %q (want %s or %s)", cfg.Sink, SinkHTTP, SinkKafka)
	}

	return cfg, nil
}

func parseDuration(name, fallback string) (time.Duration, error) {
	raw := sharedcfg.EnvOrDefault(name, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return d, nil
}

func parseCount(name string, fallback uint64) uint64 {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func parseSize(name string, fallback int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
