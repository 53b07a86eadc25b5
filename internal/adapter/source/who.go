package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
)

// WHO adapts the WHO Global Health Observatory OData API.
type WHO struct {
	client *client
	world  worldCodes
}

// NewWHO creates a WHO GHO adapter.
func NewWHO(opts Options, logger *slog.Logger, metrics *observability.Metrics) *WHO {
	return &WHO{
		client: newClient(domain.SourceWHO, opts, logger, metrics),
		world:  worldCodes{native: "GLOBAL"},
	}
}

// Source implements domain.SourceAdapter.
func (a *WHO) Source() domain.Source { return domain.SourceWHO }

// Fetch implements domain.SourceAdapter.
func (a *WHO) Fetch(ctx context.Context, nativeCode string, countries []string, years []int) (table domain.ResultTable, err error) {
	start := time.Now()
	defer func() { a.client.observe(start, len(table), err) }()

	params := url.Values{"$filter": {a.filter(countries, years)}}

	var resp ghoResponse
	if err := a.client.getJSON(ctx, "/"+url.PathEscape(nativeCode), params, &resp); err != nil {
		return nil, err
	}
	if resp.Value == nil {
		return nil, a.client.unavailable(ctx, domain.ReasonMalformed, 0, fmt.Errorf("response has no value array"))
	}

	table = make(domain.ResultTable, 0, len(*resp.Value))
	for _, r := range *resp.Value {
		if r.NumericValue == nil || sexSpecific(r.Dim1) {
			continue
		}
		if !domain.PlausibleYear(r.TimeDim) {
			continue
		}
		table = append(table, domain.IndicatorRow{
			CountryCode:   a.world.toCanonical(r.SpatialDim),
			IndicatorCode: nativeCode,
			Year:          r.TimeDim,
			Value:         *r.NumericValue,
			SourceLabel:   domain.SourceWHO.Label(),
		})
	}
	return table, nil
}

// filter builds the OData $filter for a set of areas and a year range.
func (a *WHO) filter(countries []string, years []int) string {
	minYear, maxYear := yearBounds(years)
	areas := make([]string, 0, len(countries))
	for _, c := range a.world.toNative(countries) {
		areas = append(areas, fmt.Sprintf("SpatialDim eq '%s'", strings.ReplaceAll(c, "'", "''")))
	}
	return fmt.Sprintf("(%s) and TimeDim ge %d and TimeDim le %d", strings.Join(areas, " or "), minYear, maxYear)
}

func sexSpecific(dim *string) bool {
	return dim != nil && (*dim == "SEX_MLE" || *dim == "SEX_FMLE")
}

// Probe implements domain.SourceAdapter.
func (a *WHO) Probe(ctx context.Context) (string, error) {
	return a.client.probe(ctx, "/Dimension", nil)
}

// WHO GHO API response types.

type ghoResponse struct {
	Value *[]ghoRecord `json:"value"`
}

type ghoRecord struct {
	SpatialDim   string   `json:"SpatialDim"`
	TimeDim      int      `json:"TimeDim"`
	Dim1         *string  `json:"Dim1"`
	NumericValue *float64 `json:"NumericValue"`
}
