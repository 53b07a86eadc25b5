package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 12*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 1, cfg.SourceMaxRetries)
	assert.Equal(t, 5.0, cfg.SourceRateLimit)
	assert.Equal(t, "https://api.worldbank.org/v2", cfg.WorldBankBaseURL)
	assert.Equal(t, "https://ghoapi.azureedge.net/api", cfg.WHOBaseURL)
	assert.Empty(t, cfg.FAOAPIKey)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.FallbackCacheTTL)
	assert.Equal(t, 1000, cfg.CacheMaxEntries)
	assert.Equal(t, "sdg2", cfg.RedisKeyPrefix)
	assert.Empty(t, cfg.ReferenceStatsFile)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "sdg2-indicator-rows", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SOURCE_TIMEOUT", "15s")
	t.Setenv("SOURCE_MAX_RETRIES", "3")
	t.Setenv("SOURCE_RATE_LIMIT", "0.5")
	t.Setenv("FAO_BASE_URL", "http://fao.local")
	t.Setenv("FAO_API_KEY", "fao-key")
	t.Setenv("UNICEF_API_KEY", "unicef-key")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_KEY_PREFIX", "test")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("FALLBACK_CACHE_TTL", "1m")
	t.Setenv("CACHE_MAX_ENTRIES", "50")
	t.Setenv("REFERENCE_STATS_FILE", "/etc/sdg2/reference.yaml")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "rows")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 3, cfg.SourceMaxRetries)
	assert.Equal(t, 0.5, cfg.SourceRateLimit)
	assert.Equal(t, "http://fao.local", cfg.FAOBaseURL)
	assert.Equal(t, "fao-key", cfg.FAOAPIKey)
	assert.Equal(t, "unicef-key", cfg.UNICEFAPIKey)
	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "test", cfg.RedisKeyPrefix)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, time.Minute, cfg.FallbackCacheTTL)
	assert.Equal(t, 50, cfg.CacheMaxEntries)
	assert.Equal(t, "/etc/sdg2/reference.yaml", cfg.ReferenceStatsFile)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "rows", cfg.KafkaTopic)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"source timeout too short", map[string]string{"SOURCE_TIMEOUT": "500ms"}, "SOURCE_TIMEOUT"},
		{"source timeout too long", map[string]string{"SOURCE_TIMEOUT": "2m"}, "SOURCE_TIMEOUT"},
		{"source timeout garbage", map[string]string{"SOURCE_TIMEOUT": "soon"}, "SOURCE_TIMEOUT"},
		{"retries out of range", map[string]string{"SOURCE_MAX_RETRIES": "9"}, "SOURCE_MAX_RETRIES"},
		{"retries not a number", map[string]string{"SOURCE_MAX_RETRIES": "x"}, "SOURCE_MAX_RETRIES"},
		{"rate limit zero", map[string]string{"SOURCE_RATE_LIMIT": "0"}, "SOURCE_RATE_LIMIT"},
		{"cache ttl", map[string]string{"CACHE_TTL": "-1h"}, "CACHE_TTL"},
		{"fallback ttl longer than cache ttl", map[string]string{"CACHE_TTL": "1m", "FALLBACK_CACHE_TTL": "5m"}, "FALLBACK_CACHE_TTL"},
		{"max entries", map[string]string{"CACHE_MAX_ENTRIES": "0"}, "CACHE_MAX_ENTRIES"},
		{"unknown backend", map[string]string{"CACHE_BACKEND": "memcached"}, "CACHE_BACKEND"},
		{"redis without url", map[string]string{"CACHE_BACKEND": "redis"}, "REDIS_URL"},
		{"kafka without brokers", map[string]string{"KAFKA_ENABLED": "true"}, "KAFKA_BROKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
