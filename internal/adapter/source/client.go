// Package source implements domain.SourceAdapter for the four statistical
// agencies. Every adapter shares one HTTP wrapper that applies the call
// timeout, per-source rate limiting, bounded retries and failure
// classification, so the adapters themselves only build queries and parse
// envelopes.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 12 * time.Second
	defaultRateLimit  = 5
	initialBackoff    = 200 * time.Millisecond
	maxBackoff        = 2 * time.Second
	maxErrorBodyBytes = 512
)

// Options configures the shared HTTP wrapper of an adapter.
type Options struct {
	BaseURL    string
	APIKey     string        // sent as a bearer token when set
	Timeout    time.Duration // bounds one Fetch including retries
	MaxRetries int
	RateLimit  float64 // requests per second
	HTTPClient *http.Client
}

type client struct {
	source     domain.Source
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func newClient(src domain.Source, opts Options, logger *slog.Logger, metrics *observability.Metrics) *client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &client{
		source:     src,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		timeout:    timeout,
		maxRetries: opts.MaxRetries,
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
		logger:     logger.With("source", string(src)),
		metrics:    metrics,
	}
}

// getJSON issues a GET for path with query and decodes the body into out.
// Every failure is returned as *domain.SourceUnavailableError.
func (c *client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.unavailable(ctx, domain.ReasonRateLimited, 0, fmt.Errorf("rate limiter: %w", err))
		}

		err := c.do(ctx, fullURL, out)
		if err == nil {
			return nil
		}

		var sue *domain.SourceUnavailableError
		if !errors.As(err, &sue) || !sue.Retryable() || attempt >= c.maxRetries {
			return err
		}

		c.metrics.SourceRetries.WithLabelValues(string(c.source)).Inc()
		c.logger.Debug("retrying source request", "attempt", attempt+1, "backoff", backoff, "error", err)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return c.unavailable(ctx, domain.ReasonTimeout, 0, ctx.Err())
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}
}

func (c *client) do(ctx context.Context, fullURL string, out any) error {
	resp, err := c.send(ctx, fullURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return c.unavailable(ctx, domain.ReasonTimeout, 0, err)
		}
		return c.unavailable(ctx, domain.ReasonMalformed, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// send performs one GET and returns the response only for HTTP 200.
func (c *client) send(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, c.unavailable(ctx, domain.ReasonConnection, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reason := domain.ReasonConnection
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			reason = domain.ReasonTimeout
		}
		return nil, c.unavailable(ctx, reason, 0, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close() //nolint:errcheck // body already drained
		reason := domain.ReasonStatus
		if resp.StatusCode == http.StatusTooManyRequests {
			reason = domain.ReasonRateLimited
		}
		var bodyErr error
		if msg := strings.TrimSpace(string(body)); msg != "" {
			bodyErr = errors.New(msg)
		}
		return nil, c.unavailable(ctx, reason, resp.StatusCode, bodyErr)
	}
	return resp, nil
}

// probe issues a single GET without retries and discards the body.
func (c *client) probe(ctx context.Context, path string, query url.Values) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	resp, err := c.send(ctx, fullURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return fmt.Sprintf("Successfully connected to %s API", c.source.Label()), nil
}

func (c *client) unavailable(ctx context.Context, reason domain.UnavailableReason, status int, err error) *domain.SourceUnavailableError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && reason != domain.ReasonStatus {
		reason = domain.ReasonTimeout
	}
	return &domain.SourceUnavailableError{Source: c.source, Reason: reason, StatusCode: status, Err: err}
}

// observe records the outcome of one Fetch.
func (c *client) observe(start time.Time, rows int, err error) {
	src := string(c.source)
	c.metrics.SourceDuration.WithLabelValues(src).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.SourceRequests.WithLabelValues(src, "error").Inc()
		var sue *domain.SourceUnavailableError
		if errors.As(err, &sue) {
			c.metrics.SourceFailures.WithLabelValues(src, string(sue.Reason)).Inc()
		}
		c.logger.Warn("source fetch failed", "error", err, "duration", time.Since(start))
	case rows == 0:
		c.metrics.SourceRequests.WithLabelValues(src, "empty").Inc()
	default:
		c.metrics.SourceRequests.WithLabelValues(src, "success").Inc()
	}
}
