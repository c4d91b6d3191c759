package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// countrystatecity.in API configuration.
	CSCAPIKey    string
	CSCBaseURL   string
	CSCTimeout   time.Duration
	CSCCacheSize int
	CSCCacheTTL  time.Duration
	CSCRateLimit float64
	CSCRateBurst int

	// Selection event stream.
	KafkaBrokers             []string
	KafkaSelectionTopic      string
	SelectionEventsEnabled   bool
	SelectionPublishAttempts int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cscTimeout, err := parsePositiveDuration("CSC_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CSC_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("CSC_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid CSC_RATE_LIMIT")
	}
	rateBurst, err := strconv.Atoi(sharedcfg.EnvOrDefault("CSC_RATE_BURST", "10"))
	if err != nil || rateBurst <= 0 {
		return nil, errors.New("invalid CSC_RATE_BURST")
	}

	attempts, err := strconv.Atoi(sharedcfg.EnvOrDefault("SELECTION_PUBLISH_ATTEMPTS", "3"))
	if err != nil || attempts <= 0 {
		return nil, errors.New("invalid SELECTION_PUBLISH_ATTEMPTS")
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	eventsEnabled := len(brokers) > 0
	if v := os.Getenv("SELECTION_EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CSCAPIKey:    os.Getenv("CSC_API_KEY"),
		CSCBaseURL:   strings.TrimRight(sharedcfg.EnvOrDefault("CSC_BASE_URL", "https://api.countrystatecity.in/v1"), "/"),
		CSCTimeout:   cscTimeout,
		CSCCacheSize: parseCacheSize(),
		CSCCacheTTL:  cacheTTL,
		CSCRateLimit: rateLimit,
		CSCRateBurst: rateBurst,

		KafkaBrokers:             brokers,
		KafkaSelectionTopic:      sharedcfg.EnvOrDefault("KAFKA_SELECTION_TOPIC", "location-selections"),
		SelectionEventsEnabled:   eventsEnabled,
		SelectionPublishAttempts: attempts,
	}

	if cfg.CSCAPIKey == "" {
		return nil, errors.New("CSC_API_KEY is required")
	}
	if cfg.SelectionEventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("SELECTION_EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.SelectionEventsEnabled && cfg.KafkaSelectionTopic == "" {
		return nil, errors.New("KAFKA_SELECTION_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("CSC_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
