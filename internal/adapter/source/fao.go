package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
)

// faoDomain is the FAOSTAT domain holding the suite of food security indicators.
const faoDomain = "FS"

// FAO adapts the FAOSTAT API.
type FAO struct {
	client *client
	world  worldCodes
}

// NewFAO creates a FAOSTAT adapter.
func NewFAO(opts Options, logger *slog.Logger, metrics *observability.Metrics) *FAO {
	return &FAO{
		client: newClient(domain.SourceFAO, opts, logger, metrics),
		world:  worldCodes{native: "WLD"},
	}
}

// Source implements domain.SourceAdapter.
func (a *FAO) Source() domain.Source { return domain.SourceFAO }

// Fetch implements domain.SourceAdapter. FAOSTAT publishes prevalence as
// three-year averages; each average is reported at its central year.
func (a *FAO) Fetch(ctx context.Context, nativeCode string, countries []string, years []int) (table domain.ResultTable, err error) {
	start := time.Now()
	defer func() { a.client.observe(start, len(table), err) }()

	minYear, maxYear := yearBounds(years)
	params := url.Values{
		"area":        {strings.Join(a.world.toNative(countries), ",")},
		"area_cs":     {"ISO3"},
		"item":        {nativeCode},
		"year":        {yearList(minYear, maxYear)},
		"output_type": {"objects"},
	}

	var resp faoResponse
	if err := a.client.getJSON(ctx, "/data/"+faoDomain, params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, a.client.unavailable(ctx, domain.ReasonMalformed, 0, fmt.Errorf("response has no data array"))
	}

	table = make(domain.ResultTable, 0, len(*resp.Data))
	for _, r := range *resp.Data {
		value, ok := parseValue(r.Value.String())
		if !ok {
			continue
		}
		year, ok := parseCentralYear(r.Year.String())
		if !ok {
			continue
		}
		table = append(table, domain.IndicatorRow{
			CountryCode:   a.world.toCanonical(r.AreaCode),
			CountryName:   r.Area,
			IndicatorCode: nativeCode,
			Year:          year,
			Value:         value,
			SourceLabel:   domain.SourceFAO.Label(),
		})
	}
	return table, nil
}

// yearList spells out every year from minYear to maxYear. FAOSTAT has no
// range filter, and callers cache the answer under the bounds alone.
func yearList(minYear, maxYear int) string {
	parts := make([]string, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		parts = append(parts, strconv.Itoa(y))
	}
	return strings.Join(parts, ",")
}

// Probe implements domain.SourceAdapter.
func (a *FAO) Probe(ctx context.Context) (string, error) {
	return a.client.probe(ctx, "/countries", nil)
}

// FAOSTAT API response types.

type faoResponse struct {
	Data *[]faoRecord `json:"data"`
}

type faoRecord struct {
	AreaCode string   `json:"Area Code (ISO3)"`
	Area     string   `json:"Area"`
	Year     looseStr `json:"Year"`
	Value    looseStr `json:"Value"`
}

// looseStr accepts a JSON string, number or null. FAOSTAT switches between
// them depending on the output type.
type looseStr string

func (s *looseStr) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseStr(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseStr(n.String())
	return nil
}

func (s looseStr) String() string { return string(s) }
