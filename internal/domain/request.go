package domain

import (
	"sort"
	"strings"
	"time"
)

// WorldCode is the canonical code of the global aggregate.
const WorldCode = "WORLD"

// DefaultYearSpan is the number of most recent completed years used when a
// request does not name any.
const DefaultYearSpan = 10

// Request asks for one indicator over a set of countries/regions and years.
// Source is an optional override; when empty the indicator's default applies.
type Request struct {
	Indicator string
	Countries []string
	Years     []int
	Source    string
}

// WithDefaults returns a copy of r with blank entries removed, years sorted
// and de-duplicated, and defaults applied: countries ["WORLD"] and the
// DefaultYearSpan most recent completed years relative to now.
func (r Request) WithDefaults(now time.Time) Request {
	out := Request{
		Indicator: strings.TrimSpace(r.Indicator),
		Source:    strings.TrimSpace(r.Source),
	}

	for _, c := range r.Countries {
		if c = strings.TrimSpace(c); c != "" {
			out.Countries = append(out.Countries, c)
		}
	}
	if len(out.Countries) == 0 {
		out.Countries = []string{WorldCode}
	}

	seen := make(map[int]struct{}, len(r.Years))
	for _, y := range r.Years {
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		out.Years = append(out.Years, y)
	}
	if len(out.Years) == 0 {
		last := now.Year() - 1
		for y := last - DefaultYearSpan + 1; y <= last; y++ {
			out.Years = append(out.Years, y)
		}
	}
	sort.Ints(out.Years)
	return out
}

// YearBounds returns the smallest and largest requested year. It assumes the
// request has been passed through WithDefaults.
func (r Request) YearBounds() (minYear, maxYear int) {
	if len(r.Years) == 0 {
		return 0, 0
	}
	return r.Years[0], r.Years[len(r.Years)-1]
}
