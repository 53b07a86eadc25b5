package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: 1,
		RateLimit:  1000,
	}
}

func testClient(baseURL string, opts ...func(*Options)) *client {
	o := testOptions(baseURL)
	for _, fn := range opts {
		fn(&o)
	}
	return newClient(domain.SourceWHO, o, discardLogger(), observability.NewMetricsForTesting())
}

func requireUnavailable(t *testing.T, err error) *domain.SourceUnavailableError {
	t.Helper()
	var sue *domain.SourceUnavailableError
	require.ErrorAs(t, err, &sue)
	return sue
}

func TestClient_GetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/things", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, contentTypeJSON, r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct{ OK bool }
	err := testClient(srv.URL).getJSON(context.Background(), "/things", map[string][]string{"page": {"1"}}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestClient_SendsBearerKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, func(o *Options) { o.APIKey = "secret" })
	require.NoError(t, c.getJSON(context.Background(), "/", nil, &struct{}{}))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	var out struct{ OK bool }
	require.NoError(t, c.getJSON(context.Background(), "/", nil, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.SourceRetries.WithLabelValues("who")))
}

func TestClient_RetriesAreBounded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(srv.URL, func(o *Options) { o.MaxRetries = 2 })
	err := c.getJSON(context.Background(), "/", nil, &struct{}{})

	sue := requireUnavailable(t, err)
	assert.Equal(t, domain.ReasonRateLimited, sue.Reason)
	assert.Equal(t, http.StatusTooManyRequests, sue.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such indicator"))
	}))
	defer srv.Close()

	err := testClient(srv.URL).getJSON(context.Background(), "/", nil, &struct{}{})

	sue := requireUnavailable(t, err)
	assert.Equal(t, domain.ReasonStatus, sue.Reason)
	assert.Equal(t, http.StatusNotFound, sue.StatusCode)
	assert.Contains(t, sue.Error(), "no such indicator")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	err := testClient(srv.URL).getJSON(context.Background(), "/", nil, &struct{}{})
	assert.Equal(t, domain.ReasonMalformed, requireUnavailable(t, err).Reason)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL, func(o *Options) {
		o.Timeout = 100 * time.Millisecond
		o.MaxRetries = 0
	})
	start := time.Now()
	err := c.getJSON(context.Background(), "/", nil, &struct{}{})

	assert.Equal(t, domain.ReasonTimeout, requireUnavailable(t, err).Reason)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := testClient(addr, func(o *Options) { o.MaxRetries = 0 })
	err := c.getJSON(context.Background(), "/", nil, &struct{}{})
	assert.Equal(t, domain.ReasonConnection, requireUnavailable(t, err).Reason)
}

func TestClient_Probe(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/Dimension", r.URL.Path)
			_, _ = w.Write([]byte(`{"value":[]}`))
		}))
		defer srv.Close()

		detail, err := testClient(srv.URL).probe(context.Background(), "/Dimension", nil)
		require.NoError(t, err)
		assert.Equal(t, "Successfully connected to WHO API", detail)
	})

	t.Run("probe does not retry", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).probe(context.Background(), "/", nil)
		assert.Equal(t, http.StatusBadGateway, requireUnavailable(t, err).StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})
}
