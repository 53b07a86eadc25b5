package httpadapter_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/sdg2-indicator-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/prober"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockResolver struct {
	table domain.ResultTable
	err   error
	last  domain.Request

	countries     []domain.Country
	countriesLive bool
}

func (m *mockResolver) Resolve(_ context.Context, req domain.Request) (domain.ResultTable, error) {
	m.last = req
	return m.table, m.err
}

func (m *mockResolver) Countries(context.Context) ([]domain.Country, bool) {
	return m.countries, m.countriesLive
}

type mockProber struct{}

func (mockProber) Probe(_ context.Context, src domain.Source) prober.Status {
	return prober.Status{Source: src, Label: src.Label(), Reachable: src == domain.SourceWHO}
}

func (mockProber) ProbeAll(ctx context.Context) []prober.Status {
	var out []prober.Status
	for _, s := range domain.AllSources() {
		out = append(out, mockProber{}.Probe(ctx, s))
	}
	return out
}

func newTestServer(readyErr error, res *mockResolver) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := httpadapter.NewAPI(res, mockProber{}, registry.DefaultIndicators(), registry.DefaultRegions(), logger)
	return httpadapter.NewServer(":0", api, &mockReadiness{err: readyErr}, logger)
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(fmt.Errorf("redis not ready"), &mockResolver{}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "redis not ready", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, &mockResolver{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestIndicators(t *testing.T) {
	srv := newTestServer(nil, &mockResolver{})

	rec := get(t, srv, "/v1/indicators")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.IndicatorDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 6)

	rec = get(t, srv, "/v1/indicators/2.2.1")
	require.Equal(t, http.StatusOK, rec.Code)
	var d domain.IndicatorDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, domain.SourceUNICEF, d.Sources[0])

	rec = get(t, srv, "/v1/indicators/9.9.9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `unknown indicator \"9.9.9\"`)
}

func TestRegions(t *testing.T) {
	srv := newTestServer(nil, &mockResolver{})

	rec := get(t, srv, "/v1/regions/SUB-SAHARAN_AFRICA")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sub-Saharan Africa", body.Name)
	assert.Contains(t, body.Members, "AGO")

	rec = get(t, srv, "/v1/regions/Atlantis")
	require.Equal(t, http.StatusOK, rec.Code, "unknown region is not an error")
	assert.JSONEq(t, `{"name":"Atlantis","members":[]}`, rec.Body.String())

	rec = get(t, srv, "/v1/regions")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []registry.Region
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 8)
}

func TestResolve(t *testing.T) {
	res := &mockResolver{table: domain.ResultTable{
		{CountryCode: "WORLD", CountryName: "World", IndicatorCode: "2.1.1", Year: 2023, Value: 9.1, SourceLabel: "FAO"},
		{CountryCode: "WORLD", CountryName: "World", IndicatorCode: "2.1.1", Year: 2024, Value: 9.1, SourceLabel: "FAO"},
	}}
	srv := newTestServer(nil, res)

	rec := get(t, srv, "/v1/resolve?indicator=2.1.1&countries=WORLD,%20KEN&years=2023-2024&source=fao")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpadapter.ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2.1.1", body.Indicator)
	assert.Len(t, body.Rows, 2)
	assert.False(t, body.Fallback)
	assert.Equal(t, []string{"FAO"}, body.Sources)

	assert.Equal(t, domain.Request{
		Indicator: "2.1.1", Countries: []string{"WORLD", "KEN"}, Years: []int{2023, 2024}, Source: "fao",
	}, res.last)
}

func TestResolve_Fallback(t *testing.T) {
	res := &mockResolver{table: domain.ResultTable{
		{CountryCode: "AGO", IndicatorCode: "2.2.1", Year: 2023, Value: 30.7, SourceLabel: domain.ReferenceLabel},
	}}

	rec := get(t, newTestServer(nil, res), "/v1/resolve?indicator=2.2.1&countries=AGO&years=2023")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpadapter.ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Fallback)
	assert.Equal(t, []string{domain.ReferenceLabel}, body.Sources)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"missing indicator", "/v1/resolve", nil, http.StatusBadRequest},
		{"bad years", "/v1/resolve?indicator=2.1.1&years=abc", nil, http.StatusBadRequest},
		{"reversed range", "/v1/resolve?indicator=2.1.1&years=2024-2015", nil, http.StatusBadRequest},
		{"unknown indicator", "/v1/resolve?indicator=9.9.9", &domain.UnknownIndicatorError{Code: "9.9.9"}, http.StatusNotFound},
		{"unsupported source", "/v1/resolve?indicator=2.1.1&source=unicef", &domain.UnsupportedSourceError{Indicator: "2.1.1", Source: "unicef"}, http.StatusBadRequest},
		{"unexpected", "/v1/resolve?indicator=2.1.1", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(nil, &mockResolver{err: tt.err}), tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestSources(t *testing.T) {
	srv := newTestServer(nil, &mockResolver{})

	rec := get(t, srv, "/v1/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"World Bank"`)

	rec = get(t, srv, "/v1/sources/who/probe")
	require.Equal(t, http.StatusOK, rec.Code)
	var st prober.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Reachable)

	rec = get(t, srv, "/v1/sources/probe")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []prober.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 4)
}

func TestCountries(t *testing.T) {
	res := &mockResolver{
		countries:     []domain.Country{{Code: "AGO", Name: "Angola", Region: "Sub-Saharan Africa", IncomeLevel: "Lower middle income"}},
		countriesLive: true,
	}
	rec := get(t, newTestServer(nil, res), "/v1/countries")
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpadapter.CountriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Fallback)
	require.Len(t, body.Countries, 1)
	assert.Equal(t, "AGO", body.Countries[0].Code)
	assert.Equal(t, "Lower middle income", body.Countries[0].IncomeLevel)

	rec = get(t, newTestServer(nil, &mockResolver{}), "/v1/countries")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"countries":[],"fallback":true}`, rec.Body.String())
}
