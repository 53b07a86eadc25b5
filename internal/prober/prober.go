// Package prober checks whether each statistical agency API is reachable.
package prober

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one probe.
type Status struct {
	Source    domain.Source `json:"source"`
	Label     string        `json:"label"`
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latency_ns"`
	Detail    string        `json:"detail"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Prober probes source adapters. Probes never return errors; failures are
// described in Status.Detail.
type Prober struct {
	adapters map[domain.Source]domain.SourceAdapter
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Prober over adapters.
func New(adapters []domain.SourceAdapter, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Prober {
	p := &Prober{
		adapters: make(map[domain.Source]domain.SourceAdapter, len(adapters)),
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
	for _, a := range adapters {
		p.adapters[a.Source()] = a
	}
	return p
}

// Probe issues a minimal request to src.
func (p *Prober) Probe(ctx context.Context, src domain.Source) Status {
	st := Status{Source: src, Label: src.Label(), CheckedAt: p.clock.Now()}

	adapter, ok := p.adapters[src]
	if !ok {
		st.Detail = fmt.Sprintf("Unknown source %q", string(src))
		return st
	}

	start := p.clock.Now()
	detail, err := adapter.Probe(ctx)
	st.Latency = p.clock.Since(start)

	if err != nil {
		st.Detail = describe(src, err)
		p.metrics.SourceUp.WithLabelValues(string(src)).Set(0)
		p.logger.Warn("source probe failed", "source", string(src), "detail", st.Detail, "error", err)
		return st
	}

	st.Reachable = true
	st.Detail = detail
	p.metrics.SourceUp.WithLabelValues(string(src)).Set(1)
	return st
}

// ProbeAll probes every known source concurrently. Statuses are returned in
// domain.AllSources order.
func (p *Prober) ProbeAll(ctx context.Context) []Status {
	sources := domain.AllSources()
	out := make([]Status, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			out[i] = p.Probe(gctx, src)
			return nil
		})
	}
	_ = g.Wait() // probes never fail
	return out
}

func describe(src domain.Source, err error) string {
	label := src.Label()
	var unavailable *domain.SourceUnavailableError
	if !errors.As(err, &unavailable) {
		return fmt.Sprintf("Error: %v", err)
	}

	switch unavailable.Reason {
	case domain.ReasonTimeout:
		return "Connection timeout to " + label
	case domain.ReasonConnection:
		return "Connection error to " + label
	case domain.ReasonRateLimited:
		return "Rate limited by " + label
	case domain.ReasonMalformed:
		return "Unexpected response from " + label
	}

	switch unavailable.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("Authentication failed for %s. Check API key.", label)
	case http.StatusForbidden:
		return fmt.Sprintf("Access forbidden for %s. Check permissions.", label)
	case http.StatusNotFound:
		return fmt.Sprintf("API endpoint not found for %s", label)
	default:
		return fmt.Sprintf("HTTP %d", unavailable.StatusCode)
	}
}
