// Package reference holds last-known-good indicator values used when no live
// source can answer a request.
package reference

import (
	"sort"
	"strings"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
)

// Table maps indicator code -> canonical area code -> value. Area codes are
// "WORLD", region pseudo-codes, or ISO3 country codes. A Table is read-only
// once built and safe for concurrent use.
type Table struct {
	asOf    int
	values  map[string]map[string]float64
	regions *registry.Regions
}

// New returns the built-in reference table.
func New(regions *registry.Regions) *Table {
	t := &Table{
		asOf:    builtinAsOf,
		values:  make(map[string]map[string]float64),
		regions: regions,
	}
	for ind, byArea := range builtinValues {
		for area, v := range byArea {
			t.set(ind, area, v)
		}
	}
	return t
}

// AsOf is the reference year the values describe.
func (t *Table) AsOf() int { return t.asOf }

func (t *Table) canonical(area string) string {
	if r, ok := t.regions.Lookup(area); ok {
		return r.Code
	}
	return strings.ToUpper(strings.TrimSpace(area))
}

func (t *Table) set(indicator, area string, v float64) {
	m, ok := t.values[indicator]
	if !ok {
		m = make(map[string]float64)
		t.values[indicator] = m
	}
	m[t.canonical(area)] = v
}

// Lookup returns the exact entry for area, which may be a country code, a
// region name or a region pseudo-code.
func (t *Table) Lookup(indicator, area string) (float64, bool) {
	v, ok := t.values[indicator][t.canonical(area)]
	return v, ok
}

// Resolve walks the fallback chain for area: its own entry, then the entry of
// its region, then the WORLD entry. ok is false only when the indicator has no
// WORLD entry either.
func (t *Table) Resolve(indicator, area string) (float64, bool) {
	if v, ok := t.Lookup(indicator, area); ok {
		return v, true
	}
	if region := t.regions.RegionFor(area); region != registry.WorldRegion {
		if v, ok := t.Lookup(indicator, region); ok {
			return v, true
		}
	}
	return t.Lookup(indicator, domain.WorldCode)
}

// Indicators lists the indicator codes present in the table, sorted.
func (t *Table) Indicators() []string {
	out := make([]string, 0, len(t.values))
	for ind := range t.values {
		out = append(out, ind)
	}
	sort.Strings(out)
	return out
}

// Entries returns a copy of the values for one indicator.
func (t *Table) Entries(indicator string) map[string]float64 {
	out := make(map[string]float64, len(t.values[indicator]))
	for k, v := range t.values[indicator] {
		out[k] = v
	}
	return out
}
