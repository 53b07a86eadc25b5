package source

import (
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
)

// parseValue reads an agency value string. Empty strings and "NaN" are
// missing values. Censored bounds such as "<2.5" are read as the bound.
func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "<>=≤≥ ")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseLeadingYear reads the first four-digit year of a period such as
// "2019", "2019-2020" or "2020Q1".
func parseLeadingYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || !domain.PlausibleYear(y) {
		return 0, false
	}
	return y, true
}

// parseCentralYear maps a multi-year period "2019-2021" to its central year
// (2020). Single years are returned unchanged.
func parseCentralYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	from, to, found := strings.Cut(s, "-")
	if !found {
		return parseLeadingYear(s)
	}
	a, okA := parseLeadingYear(from)
	b, okB := parseLeadingYear(to)
	if !okA || !okB || b < a {
		return 0, false
	}
	return (a + b) / 2, true
}

// worldCodes maps canonical codes to an agency's native codes and back.
type worldCodes struct {
	native string
}

func (w worldCodes) toNative(countries []string) []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		if strings.EqualFold(c, domain.WorldCode) {
			out[i] = w.native
			continue
		}
		out[i] = strings.ToUpper(c)
	}
	return out
}

func (w worldCodes) toCanonical(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == w.native {
		return domain.WorldCode
	}
	return code
}

func yearBounds(years []int) (minYear, maxYear int) {
	if len(years) == 0 {
		return domain.MinYear, domain.MaxYear
	}
	minYear, maxYear = years[0], years[0]
	for _, y := range years[1:] {
		minYear = min(minYear, y)
		maxYear = max(maxYear, y)
	}
	return minYear, maxYear
}
