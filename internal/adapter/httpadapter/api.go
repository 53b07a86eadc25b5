// Package httpadapter serves the indicator API over HTTP.
package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/prober"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
)

// Resolver resolves indicator requests and lists countries.
type Resolver interface {
	Resolve(ctx context.Context, req domain.Request) (domain.ResultTable, error)
	Countries(ctx context.Context) ([]domain.Country, bool)
}

// Prober reports source reachability.
type Prober interface {
	Probe(ctx context.Context, src domain.Source) prober.Status
	ProbeAll(ctx context.Context) []prober.Status
}

// API holds the /v1 handlers.
type API struct {
	resolver   Resolver
	prober     Prober
	indicators *registry.Indicators
	regions    *registry.Regions
	logger     *slog.Logger
}

// NewAPI creates the /v1 handlers.
func NewAPI(resolver Resolver, prober Prober, indicators *registry.Indicators, regions *registry.Regions, logger *slog.Logger) *API {
	return &API{
		resolver:   resolver,
		prober:     prober,
		indicators: indicators,
		regions:    regions,
		logger:     logger,
	}
}

// Register mounts the API routes on r.
func (a *API) Register(r chi.Router) {
	r.Get("/indicators", a.listIndicators)
	r.Get("/indicators/{code}", a.getIndicator)
	r.Get("/countries", a.listCountries)
	r.Get("/regions", a.listRegions)
	r.Get("/regions/{name}", a.getRegion)
	r.Get("/resolve", a.resolve)
	r.Get("/sources", a.listSources)
	r.Get("/sources/probe", a.probeAll)
	r.Get("/sources/{source}/probe", a.probe)
}

type errorResponse struct {
	Error string `json:"error"`
}

// ResolveResponse is the body of GET /v1/resolve.
type ResolveResponse struct {
	Indicator string             `json:"indicator"`
	Rows      domain.ResultTable `json:"rows"`
	Fallback  bool               `json:"fallback"`
	Sources   []string           `json:"sources"`
}

// CountriesResponse is the body of GET /v1/countries. Fallback is set when
// the list was rebuilt from the region table.
type CountriesResponse struct {
	Countries []domain.Country `json:"countries"`
	Fallback  bool             `json:"fallback"`
}

type sourceInfo struct {
	Source domain.Source `json:"source"`
	Label  string        `json:"label"`
}

type regionDetail struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}

func (a *API) listIndicators(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, a.indicators.List())
}

func (a *API) getIndicator(w http.ResponseWriter, r *http.Request) {
	d, err := a.indicators.Describe(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, d)
}

func (a *API) listCountries(w http.ResponseWriter, r *http.Request) {
	list, fromSource := a.resolver.Countries(r.Context())
	if list == nil {
		list = []domain.Country{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, CountriesResponse{Countries: list, Fallback: !fromSource})
}

func (a *API) listRegions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, a.regions.List())
}

// getRegion answers unknown names with an empty member list.
func (a *API) getRegion(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if region, ok := a.regions.Lookup(name); ok {
		name = region.Name
	}
	sharedobs.WriteJSON(w, http.StatusOK, regionDetail{Name: name, Members: a.regions.MembersOf(name)})
}

func (a *API) resolve(w http.ResponseWriter, r *http.Request) {
	req, err := parseResolveQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	table, err := a.resolver.Resolve(r.Context(), req)
	if err != nil {
		var unknown *domain.UnknownIndicatorError
		var unsupported *domain.UnsupportedSourceError
		switch {
		case errors.As(err, &unknown):
			writeError(w, http.StatusNotFound, err)
		case errors.As(err, &unsupported):
			writeError(w, http.StatusBadRequest, err)
		default:
			a.logger.Error("resolve failed", "indicator", req.Indicator, "error", err)
			writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		}
		return
	}

	sources := table.Labels()
	if sources == nil {
		sources = []string{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, ResolveResponse{
		Indicator: req.Indicator,
		Rows:      table,
		Fallback:  table.IsFallback(),
		Sources:   sources,
	})
}

func (a *API) listSources(w http.ResponseWriter, _ *http.Request) {
	out := make([]sourceInfo, 0, len(domain.AllSources()))
	for _, s := range domain.AllSources() {
		out = append(out, sourceInfo{Source: s, Label: s.Label()})
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (a *API) probeAll(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, a.prober.ProbeAll(r.Context()))
}

func (a *API) probe(w http.ResponseWriter, r *http.Request) {
	src, _ := domain.ParseSource(chi.URLParam(r, "source"))
	sharedobs.WriteJSON(w, http.StatusOK, a.prober.Probe(r.Context(), src))
}

func parseResolveQuery(r *http.Request) (domain.Request, error) {
	q := r.URL.Query()
	req := domain.Request{
		Indicator: strings.TrimSpace(q.Get("indicator")),
		Countries: splitList(q.Get("countries")),
		Source:    strings.TrimSpace(q.Get("source")),
	}
	if req.Indicator == "" {
		return req, errors.New("missing indicator")
	}
	years, err := domain.ParseYears(q.Get("years"))
	if err != nil {
		return req, err
	}
	req.Years = years
	return req, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
