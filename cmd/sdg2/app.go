package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/sdg2-indicator-service/internal/adapter/kafka"
	"github.com/couchcryptid/sdg2-indicator-service/internal/adapter/source"
	"github.com/couchcryptid/sdg2-indicator-service/internal/cache"
	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/couchcryptid/sdg2-indicator-service/internal/prober"
	"github.com/couchcryptid/sdg2-indicator-service/internal/reference"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
	"github.com/couchcryptid/sdg2-indicator-service/internal/resolver"
	"github.com/jonboulle/clockwork"
)

// readyStore is a cache backend that can report readiness.
type readyStore interface {
	cache.Store
	CheckReadiness(ctx context.Context) error
}

// app holds the components shared by every command.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	indicators *registry.Indicators
	regions    *registry.Regions
	reference  *reference.Table
	adapters   []domain.SourceAdapter
	store      readyStore
	sink       *kafka.Writer
	closers    []func() error
}

func newApp(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	a := &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
		indicators: registry.DefaultIndicators(),
		regions:    registry.DefaultRegions(),
	}

	ref, err := loadReference(cfg, a.indicators, a.regions)
	if err != nil {
		return nil, err
	}
	a.reference = ref

	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rs := cache.NewRedisStore(client, cfg.RedisKeyPrefix, a.clock)
		a.store = rs
		a.closers = append(a.closers, rs.Close)
		logger.Info("redis cache enabled", "prefix", cfg.RedisKeyPrefix)
	default:
		a.store = cache.NewMemoryStore(a.clock, cfg.CacheMaxEntries)
	}

	a.adapters = source.FromConfig(cfg, logger, metrics)
	return a, nil
}

// loadReference returns the built-in reference table, overridden by
// REFERENCE_STATS_FILE when set.
func loadReference(cfg *config.Config, indicators *registry.Indicators, regions *registry.Regions) (*reference.Table, error) {
	ref := reference.New(regions)
	if cfg.ReferenceStatsFile == "" {
		return ref, nil
	}
	doc, err := reference.LoadFile(cfg.ReferenceStatsFile)
	if err != nil {
		return nil, err
	}
	known := func(code string) bool {
		_, err := indicators.Describe(code)
		return err == nil
	}
	merged, err := ref.Merge(doc, known)
	if err != nil {
		return nil, fmt.Errorf("reference stats %s: %w", cfg.ReferenceStatsFile, err)
	}
	return merged, nil
}

// enableSink attaches the Kafka row sink when configured.
func (a *app) enableSink() {
	if !a.cfg.KafkaEnabled {
		return
	}
	a.sink = kafka.NewWriter(a.cfg, a.logger, a.metrics)
	a.closers = append(a.closers, a.sink.Close)
	a.logger.Info("kafka row sink enabled", "topic", a.cfg.KafkaTopic, "brokers", a.cfg.KafkaBrokers)
}

func (a *app) newResolver() *resolver.Resolver {
	opts := []resolver.Option{
		resolver.WithClock(a.clock),
		resolver.WithTTL(a.cfg.CacheTTL, a.cfg.FallbackCacheTTL),
	}
	if a.sink != nil {
		opts = append(opts, resolver.WithSink(a.sink))
	}
	return resolver.New(a.indicators, a.regions, a.reference, a.adapters, a.store, a.logger, a.metrics, opts...)
}

func (a *app) newProber() *prober.Prober {
	return prober.New(a.adapters, a.clock, a.logger, a.metrics)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close error", "error", err)
		}
	}
}
