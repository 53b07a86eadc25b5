package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
)

const worldBankPageSize = 1000

// WorldBank adapts the World Bank Indicators API v2.
type WorldBank struct {
	client *client
	world  worldCodes
}

// NewWorldBank creates a World Bank adapter.
func NewWorldBank(opts Options, logger *slog.Logger, metrics *observability.Metrics) *WorldBank {
	return &WorldBank{
		client: newClient(domain.SourceWorldBank, opts, logger, metrics),
		world:  worldCodes{native: "WLD"},
	}
}

// Source implements domain.SourceAdapter.
func (a *WorldBank) Source() domain.Source { return domain.SourceWorldBank }

// Fetch implements domain.SourceAdapter.
func (a *WorldBank) Fetch(ctx context.Context, nativeCode string, countries []string, years []int) (table domain.ResultTable, err error) {
	start := time.Now()
	defer func() { a.client.observe(start, len(table), err) }()

	minYear, maxYear := yearBounds(years)
	codes := a.world.toNative(countries)
	for i, c := range codes {
		codes[i] = url.PathEscape(c)
	}
	path := fmt.Sprintf("/country/%s/indicator/%s", strings.Join(codes, ";"), url.PathEscape(nativeCode))
	params := url.Values{
		"format":   {"json"},
		"date":     {fmt.Sprintf("%d:%d", minYear, maxYear)},
		"per_page": {fmt.Sprint(worldBankPageSize)},
	}

	var envelope []json.RawMessage
	if err := a.client.getJSON(ctx, path, params, &envelope); err != nil {
		return nil, err
	}
	rows, err := a.parse(envelope)
	if err != nil {
		return nil, a.client.unavailable(ctx, domain.ReasonMalformed, 0, err)
	}
	return rows, nil
}

// checkMeta validates the [metadata, records] envelope shared by every
// World Bank endpoint.
func (a *WorldBank) checkMeta(envelope []json.RawMessage) error {
	if len(envelope) == 0 {
		return fmt.Errorf("empty envelope")
	}

	var meta wbMeta
	if err := json.Unmarshal(envelope[0], &meta); err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	if len(meta.Message) > 0 {
		m := meta.Message[0]
		return fmt.Errorf("api error %s %s: %s", m.ID, m.Key, m.Value)
	}
	if len(envelope) < 2 {
		return fmt.Errorf("envelope has %d elements, want 2", len(envelope))
	}
	if meta.Pages > 1 {
		a.client.logger.Warn("world bank result truncated to first page", "pages", meta.Pages, "total", meta.Total)
	}
	return nil
}

func (a *WorldBank) parse(envelope []json.RawMessage) (domain.ResultTable, error) {
	if err := a.checkMeta(envelope); err != nil {
		return nil, err
	}

	var records []wbRecord
	if err := json.Unmarshal(envelope[1], &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	table := make(domain.ResultTable, 0, len(records))
	for _, r := range records {
		if r.Value == nil {
			continue
		}
		year, ok := parseLeadingYear(r.Date)
		if !ok {
			continue
		}
		code := r.CountryISO3
		if code == "" {
			code = r.Country.ID
		}
		table = append(table, domain.IndicatorRow{
			CountryCode:   a.world.toCanonical(code),
			CountryName:   r.Country.Value,
			IndicatorCode: r.Indicator.ID,
			Year:          year,
			Value:         *r.Value,
			SourceLabel:   domain.SourceWorldBank.Label(),
		})
	}
	return table, nil
}

// Countries implements domain.CountryLister. Aggregates such as income
// groups and "World" are left out.
func (a *WorldBank) Countries(ctx context.Context) (list []domain.Country, err error) {
	start := time.Now()
	defer func() { a.client.observe(start, len(list), err) }()

	params := url.Values{
		"format":   {"json"},
		"per_page": {fmt.Sprint(worldBankPageSize)},
	}
	var envelope []json.RawMessage
	if err := a.client.getJSON(ctx, "/country", params, &envelope); err != nil {
		return nil, err
	}
	if err := a.checkMeta(envelope); err != nil {
		return nil, a.client.unavailable(ctx, domain.ReasonMalformed, 0, err)
	}

	var records []wbCountry
	if err := json.Unmarshal(envelope[1], &records); err != nil {
		return nil, a.client.unavailable(ctx, domain.ReasonMalformed, 0, fmt.Errorf("decode countries: %w", err))
	}
	list = make([]domain.Country, 0, len(records))
	for _, r := range records {
		region := strings.TrimSpace(r.Region.Value)
		if region == "" || region == "Aggregates" {
			continue
		}
		list = append(list, domain.Country{
			Code:        strings.ToUpper(r.ID),
			Name:        r.Name,
			Region:      region,
			IncomeLevel: r.IncomeLevel.Value,
		})
	}
	return list, nil
}

// Probe implements domain.SourceAdapter.
func (a *WorldBank) Probe(ctx context.Context) (string, error) {
	return a.client.probe(ctx, "/country", url.Values{"format": {"json"}, "per_page": {"1"}})
}

// World Bank API response types.

type wbMeta struct {
	Pages   int `json:"pages"`
	Total   int `json:"total"`
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

type wbRecord struct {
	Indicator   wbRef    `json:"indicator"`
	Country     wbRef    `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
}

type wbRef struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type wbCountry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Region      wbRef  `json:"region"`
	IncomeLevel wbRef  `json:"incomeLevel"`
}
