package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	// Release listing.
	ListingURL      string
	SiteOrigin      string
	ListingMinYear  int
	ListingMaxPages int

	// Release fetching.
	CacheDir         string
	Offline          bool
	HTTPTimeout      time.Duration
	FetchConcurrency int

	PatternsFile string
	OutputPath   string
	MetricsFile  string

	// Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel        string
	LogFormat       string
	RunTimeout      time.Duration
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether the per-day Kafka sink is configured.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := parsePositiveDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	runTimeout, err := parsePositiveDuration("RUN_TIMEOUT", "10m")
	if err != nil {
		return nil, err
	}

	minYear, err := parseIntInRange("LISTING_MIN_YEAR", 2020, 2000, 2100)
	if err != nil {
		return nil, err
	}
	maxPages, err := parseIntInRange("LISTING_MAX_PAGES", 100, 1, 10000)
	if err != nil {
		return nil, err
	}
	concurrency, err := parseIntInRange("FETCH_CONCURRENCY", 4, 1, 32)
	if err != nil {
		return nil, err
	}

	offline, err := strconv.ParseBool(sharedcfg.EnvOrDefault("OFFLINE", "false"))
	if err != nil {
		return nil, errors.New("invalid OFFLINE")
	}

	cfg := &Config{
		ListingURL:      sharedcfg.EnvOrDefault("LISTING_URL", "https://www.health.govt.nz/news-media/media-releases"),
		SiteOrigin:      sharedcfg.EnvOrDefault("SITE_ORIGIN", "https://www.health.govt.nz"),
		ListingMinYear:  minYear,
		ListingMaxPages: maxPages,

		CacheDir:         sharedcfg.EnvOrDefault("CACHE_DIR", "data_cache"),
		Offline:          offline,
		HTTPTimeout:      httpTimeout,
		FetchConcurrency: concurrency,

		PatternsFile: os.Getenv("PATTERNS_FILE"),
		OutputPath:   sharedcfg.EnvOrDefault("OUTPUT_PATH", "nzl.json"),
		MetricsFile:  os.Getenv("METRICS_FILE"),

		KafkaBrokers: parseOptionalBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "covid-timeseries-nzl"),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		RunTimeout:      runTimeout,
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.CacheDir == "" {
		return nil, errors.New("CACHE_DIR is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if !cfg.Offline && cfg.ListingURL == "" {
		return nil, errors.New("LISTING_URL is required unless OFFLINE is true")
	}
	if cfg.KafkaEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parseOptionalBrokers(s string) []string {
	if s == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}
