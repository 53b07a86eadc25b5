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

// UNICEF adapts the UNICEF SDG data API.
type UNICEF struct {
	client *client
	world  worldCodes
}

// NewUNICEF creates a UNICEF adapter.
func NewUNICEF(opts Options, logger *slog.Logger, metrics *observability.Metrics) *UNICEF {
	return &UNICEF{
		client: newClient(domain.SourceUNICEF, opts, logger, metrics),
		world:  worldCodes{native: "WORLD"}, // same as the canonical code
	}
}

// Source implements domain.SourceAdapter.
func (a *UNICEF) Source() domain.Source { return domain.SourceUNICEF }

// Fetch implements domain.SourceAdapter.
func (a *UNICEF) Fetch(ctx context.Context, nativeCode string, countries []string, years []int) (table domain.ResultTable, err error) {
	start := time.Now()
	defer func() { a.client.observe(start, len(table), err) }()

	minYear, maxYear := yearBounds(years)
	params := url.Values{
		"indicator":    {nativeCode},
		"ref_area":     {strings.Join(a.world.toNative(countries), "+")},
		"start_period": {fmt.Sprint(minYear)},
		"end_period":   {fmt.Sprint(maxYear)},
	}

	var resp unicefResponse
	if err := a.client.getJSON(ctx, "/data", params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, a.client.unavailable(ctx, domain.ReasonMalformed, 0, fmt.Errorf("response has no data array"))
	}

	table = make(domain.ResultTable, 0, len(*resp.Data))
	for _, r := range *resp.Data {
		value, ok := parseValue(r.ObsValue)
		if !ok {
			continue
		}
		year, ok := parseLeadingYear(r.TimePeriod)
		if !ok {
			continue
		}
		table = append(table, domain.IndicatorRow{
			CountryCode:   a.world.toCanonical(r.RefArea),
			CountryName:   r.AreaName,
			IndicatorCode: nativeCode,
			Year:          year,
			Value:         value,
			SourceLabel:   domain.SourceUNICEF.Label(),
		})
	}
	return table, nil
}

// Probe implements domain.SourceAdapter.
func (a *UNICEF) Probe(ctx context.Context) (string, error) {
	return a.client.probe(ctx, "/Goal/2", nil)
}

// UNICEF API response types.

type unicefResponse struct {
	Data *[]unicefRecord `json:"data"`
}

type unicefRecord struct {
	RefArea    string `json:"REF_AREA"`
	AreaName   string `json:"Geographic area"`
	TimePeriod string `json:"TIME_PERIOD"`
	ObsValue   string `json:"OBS_VALUE"`
}
