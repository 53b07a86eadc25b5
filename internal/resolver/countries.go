package resolver

import (
	"context"
	"sort"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
)

// Countries returns the country catalogue of the World Bank. When the
// catalogue cannot be fetched it is rebuilt from the region table and
// fromSource is false.
func (r *Resolver) Countries(ctx context.Context) (list []domain.Country, fromSource bool) {
	lister, ok := r.adapters[domain.SourceWorldBank].(domain.CountryLister)
	if !ok {
		r.logger.Warn("no country catalogue source, using region table")
		return r.regionCountries(), false
	}

	list, err := lister.Countries(ctx)
	if err != nil || len(list) == 0 {
		r.metrics.Fallbacks.WithLabelValues("countries").Inc()
		r.logger.Warn("country catalogue unavailable, using region table", "error", err)
		return r.regionCountries(), false
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, true
}

// regionCountries lists every region member once, under the first region
// that names it.
func (r *Resolver) regionCountries() []domain.Country {
	seen := make(map[string]bool)
	var out []domain.Country
	for _, region := range r.regions.List() {
		for _, code := range region.Members {
			if seen[code] {
				continue
			}
			seen[code] = true
			out = append(out, domain.Country{
				Code:        code,
				Name:        r.regions.CountryName(code),
				Region:      region.Name,
				IncomeLevel: domain.UnknownIncomeLevel,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
