package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Agency access.
	SourceTimeout    time.Duration
	SourceMaxRetries int
	SourceRateLimit  float64 // requests per second per source
	WorldBankBaseURL string
	FAOBaseURL       string
	UNICEFBaseURL    string
	WHOBaseURL       string
	FAOAPIKey        string
	UNICEFAPIKey     string

	// Result cache.
	CacheBackend     string
	CacheTTL         time.Duration
	FallbackCacheTTL time.Duration
	CacheMaxEntries  int
	RedisURL         string
	RedisKeyPrefix   string

	ReferenceStatsFile string

	// Optional Kafka sink for live rows.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "12s")
	if err != nil {
		return nil, err
	}
	if sourceTimeout < time.Second || sourceTimeout > time.Minute {
		return nil, errors.New("invalid SOURCE_TIMEOUT: must be between 1s and 60s")
	}

	maxRetries, err := parseInt("SOURCE_MAX_RETRIES", 1)
	if err != nil {
		return nil, err
	}
	if maxRetries < 0 || maxRetries > 5 {
		return nil, errors.New("invalid SOURCE_MAX_RETRIES: must be 0-5")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("SOURCE_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid SOURCE_RATE_LIMIT: must be a positive number")
	}

	cacheTTL, err := parseDuration("CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	fallbackTTL, err := parseDuration("FALLBACK_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	maxEntries, err := parseInt("CACHE_MAX_ENTRIES", 1000)
	if err != nil {
		return nil, err
	}
	if maxEntries < 1 {
		return nil, errors.New("invalid CACHE_MAX_ENTRIES: must be positive")
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SourceTimeout:    sourceTimeout,
		SourceMaxRetries: maxRetries,
		SourceRateLimit:  rateLimit,
		WorldBankBaseURL: sharedcfg.EnvOrDefault("WORLD_BANK_BASE_URL", "https://api.worldbank.org/v2"),
		FAOBaseURL:       sharedcfg.EnvOrDefault("FAO_BASE_URL", "https://fenixservices.fao.org/faostat/api/v1/en"),
		UNICEFBaseURL:    sharedcfg.EnvOrDefault("UNICEF_BASE_URL", "https://sdgapi.unicef.org"),
		WHOBaseURL:       sharedcfg.EnvOrDefault("WHO_BASE_URL", "https://ghoapi.azureedge.net/api"),
		FAOAPIKey:        os.Getenv("FAO_API_KEY"),
		UNICEFAPIKey:     os.Getenv("UNICEF_API_KEY"),

		CacheBackend:     sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheBackendMemory),
		CacheTTL:         cacheTTL,
		FallbackCacheTTL: fallbackTTL,
		CacheMaxEntries:  maxEntries,
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisKeyPrefix:   sharedcfg.EnvOrDefault("REDIS_KEY_PREFIX", "sdg2"),

		ReferenceStatsFile: os.Getenv("REFERENCE_STATS_FILE"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sdg2-indicator-rows"),
	}

	switch cfg.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("CACHE_BACKEND is redis but REDIS_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: must be memory or redis", cfg.CacheBackend)
	}
	if cfg.FallbackCacheTTL > cfg.CacheTTL {
		return nil, errors.New("FALLBACK_CACHE_TTL must not exceed CACHE_TTL")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", key)
	}
	return n, nil
}
