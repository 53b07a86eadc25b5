// Package resolver turns indicator requests into normalized result tables.
//
// Resolution validates the request against the registry, picks a source,
// consults the cache, fetches from the source adapter and normalizes the
// rows. Any failure of the source, or an empty answer, is absorbed by falling
// back to reference statistics; only caller mistakes (unknown indicator,
// unsupported source) are returned as errors.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/cache"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/couchcryptid/sdg2-indicator-service/internal/reference"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Default time-to-live of cache entries.
const (
	DefaultLiveTTL     = 24 * time.Hour
	DefaultFallbackTTL = 5 * time.Minute
)

// TableSink receives every table resolved from a live source.
type TableSink interface {
	Publish(ctx context.Context, src domain.Source, table domain.ResultTable) error
}

// Resolver resolves indicator requests. It is safe for concurrent use.
type Resolver struct {
	indicators  *registry.Indicators
	regions     *registry.Regions
	reference   *reference.Table
	adapters    map[domain.Source]domain.SourceAdapter
	store       cache.Store
	sink        TableSink
	clock       clockwork.Clock
	liveTTL     time.Duration
	fallbackTTL time.Duration
	flight      singleflight.Group
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithClock sets the time source used for request defaults.
func WithClock(c clockwork.Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// WithTTL sets the lifetime of live and fallback cache entries.
func WithTTL(live, fallback time.Duration) Option {
	return func(r *Resolver) {
		r.liveTTL = live
		r.fallbackTTL = fallback
	}
}

// WithSink publishes live tables to sink.
func WithSink(sink TableSink) Option {
	return func(r *Resolver) { r.sink = sink }
}

// New creates a Resolver over the given lookup tables, adapters and cache.
func New(
	indicators *registry.Indicators,
	regions *registry.Regions,
	ref *reference.Table,
	adapters []domain.SourceAdapter,
	store cache.Store,
	logger *slog.Logger,
	metrics *observability.Metrics,
	opts ...Option,
) *Resolver {
	r := &Resolver{
		indicators:  indicators,
		regions:     regions,
		reference:   ref,
		adapters:    make(map[domain.Source]domain.SourceAdapter, len(adapters)),
		store:       store,
		clock:       clockwork.NewRealClock(),
		liveTTL:     DefaultLiveTTL,
		fallbackTTL: DefaultFallbackTTL,
		logger:      logger,
		metrics:     metrics,
	}
	for _, a := range adapters {
		r.adapters[a.Source()] = a
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// plan is a validated request with its effective source and cache keys.
type plan struct {
	req         domain.Request
	descriptor  domain.IndicatorDescriptor
	source      domain.Source
	nativeCode  string
	areas       []area
	liveKey     string
	fallbackKey string
}

// Resolve returns the normalized table for req. It fails only with
// *domain.UnknownIndicatorError or *domain.UnsupportedSourceError; every
// other problem is answered from reference statistics.
func (r *Resolver) Resolve(ctx context.Context, req domain.Request) (domain.ResultTable, error) {
	start := r.clock.Now()
	defer func() { r.metrics.ResolveDuration.Observe(r.clock.Since(start).Seconds()) }()

	p, err := r.plan(req)
	if err != nil {
		r.metrics.Resolves.WithLabelValues("error").Inc()
		return nil, err
	}

	if table, ok := r.cached(ctx, "live", p.liveKey); ok {
		r.metrics.Resolves.WithLabelValues("cached").Inc()
		return table, nil
	}
	if table, ok := r.cached(ctx, "fallback", p.fallbackKey); ok {
		r.metrics.Resolves.WithLabelValues("cached").Inc()
		return table, nil
	}

	// The shared fetch outlives any one caller; the adapter's own timeout
	// bounds it.
	ch := r.flight.DoChan(p.flightKey(), func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), p), nil
	})
	select {
	case res := <-ch:
		return res.Val.(domain.ResultTable).Clone(), nil
	case <-ctx.Done():
		r.logger.Debug("caller gone before fetch finished", "indicator", p.descriptor.Code, "error", ctx.Err())
		return r.referenceRows(p), nil
	}
}

// flightKey identifies fetches that can share a result. Live answers depend
// on the year bounds only, fallback answers on every requested year.
func (p plan) flightKey() string {
	return p.liveKey + "|" + p.fallbackKey
}

func (r *Resolver) plan(req domain.Request) (plan, error) {
	req = req.WithDefaults(r.clock.Now())

	d, err := r.indicators.Describe(req.Indicator)
	if err != nil {
		return plan{}, err
	}

	src := d.DefaultSource()
	if req.Source != "" {
		s, ok := domain.ParseSource(req.Source)
		if !ok || !d.Supports(s) {
			return plan{}, &domain.UnsupportedSourceError{Indicator: d.Code, Source: req.Source}
		}
		src = s
	}

	areas := r.expand(req.Countries)
	codes := make([]string, len(areas))
	for i, a := range areas {
		codes[i] = a.code
	}
	minYear, maxYear := req.YearBounds()

	return plan{
		req:         req,
		descriptor:  d,
		source:      src,
		nativeCode:  d.NativeCodes[src],
		areas:       areas,
		liveKey:     cache.LiveKey(src, d.Code, codes, minYear, maxYear),
		fallbackKey: cache.FallbackKey(src, d.Code, codes, req.Years),
	}, nil
}

func (r *Resolver) cached(ctx context.Context, kind, key string) (domain.ResultTable, bool) {
	table, ok, err := r.store.Get(ctx, key)
	switch {
	case err != nil:
		r.metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		r.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
		return nil, false
	case !ok:
		r.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return nil, false
	default:
		r.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
		return table, true
	}
}

func (r *Resolver) put(ctx context.Context, key string, table domain.ResultTable, ttl time.Duration) {
	if err := r.store.Put(ctx, key, table, ttl); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// fetch queries the source and shapes its rows, falling back to reference
// statistics on failure or an empty answer.
func (r *Resolver) fetch(ctx context.Context, p plan) domain.ResultTable {
	logger := r.logger.With("indicator", p.descriptor.Code, "source", string(p.source))

	adapter, ok := r.adapters[p.source]
	if !ok {
		logger.Error("no adapter registered for source")
		return r.fallback(ctx, p, "unavailable")
	}

	raw, err := adapter.Fetch(ctx, p.nativeCode, fetchCodes(p.areas), yearRange(p.req.YearBounds()))
	if err != nil {
		if !errors.As(err, new(*domain.SourceUnavailableError)) {
			logger.Error("adapter returned unclassified error", "error", err)
		}
		logger.Warn("source unavailable, using reference statistics", "error", err)
		return r.fallback(ctx, p, "unavailable")
	}

	table := r.shape(p, raw)
	if len(table) == 0 {
		logger.Info("source returned no rows, using reference statistics")
		return r.fallback(ctx, p, "empty")
	}

	r.put(ctx, p.liveKey, table, r.liveTTL)
	r.metrics.Resolves.WithLabelValues("live").Inc()

	if r.sink != nil {
		if err := r.sink.Publish(ctx, p.source, table); err != nil {
			logger.Warn("row sink publish failed", "error", err)
		}
	}
	return table
}

// shape canonicalizes adapter rows: SDG indicator code, display names, the
// requested year range and regional aggregation, then normalizes.
func (r *Resolver) shape(p plan, raw domain.ResultTable) domain.ResultTable {
	minYear, maxYear := p.req.YearBounds()
	rows := raw.WithinYears(minYear, maxYear)
	for i := range rows {
		rows[i].IndicatorCode = p.descriptor.Code
		if rows[i].CountryName == "" {
			rows[i].CountryName = r.regions.CountryName(rows[i].CountryCode)
		}
	}

	out := aggregate(p.areas, rows, p.source.Label())
	if p.descriptor.Unit == domain.UnitPercentage {
		r.checkPercentages(out)
	}
	return domain.Normalize(out, p.source.Label())
}

func (r *Resolver) checkPercentages(table domain.ResultTable) {
	for _, row := range table {
		if row.Value < 0 || row.Value > 100 {
			r.metrics.DataQualityWarnings.WithLabelValues(row.IndicatorCode).Inc()
			r.logger.Warn("percentage outside [0,100]",
				"indicator", row.IndicatorCode, "country", row.CountryCode, "year", row.Year, "value", row.Value)
		}
	}
}

// fallback answers p from reference statistics and caches the answer
// briefly.
func (r *Resolver) fallback(ctx context.Context, p plan, reason string) domain.ResultTable {
	r.metrics.Fallbacks.WithLabelValues(reason).Inc()
	r.metrics.Resolves.WithLabelValues("fallback").Inc()

	table := r.referenceRows(p)
	r.put(ctx, p.fallbackKey, table, r.fallbackTTL)
	return table
}

// referenceRows builds one reference row per requested area per requested year.
func (r *Resolver) referenceRows(p plan) domain.ResultTable {
	table := make(domain.ResultTable, 0, len(p.areas)*len(p.req.Years))
	for _, a := range p.areas {
		value, ok := r.reference.Resolve(p.descriptor.Code, a.code)
		if !ok {
			r.logger.Warn("no reference value", "indicator", p.descriptor.Code, "country", a.code)
			continue
		}
		for _, year := range p.req.Years {
			table = append(table, domain.IndicatorRow{
				CountryCode:   a.code,
				CountryName:   r.regions.CountryName(a.code),
				IndicatorCode: p.descriptor.Code,
				Year:          year,
				Value:         value,
			})
		}
	}
	return domain.Normalize(table, domain.ReferenceLabel)
}

// yearRange lists every year from minYear to maxYear. Live tables are cached
// by their bounds, so the source is always asked for the whole span.
func yearRange(minYear, maxYear int) []int {
	years := make([]int, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		years = append(years, y)
	}
	return years
}
