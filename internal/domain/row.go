package domain

import (
	"sort"
)

// Plausible year bounds for indicator observations.
const (
	MinYear = 1990
	MaxYear = 2030
)

// IndicatorRow is the canonical normalized observation.
type IndicatorRow struct {
	CountryCode   string  `json:"country_code"`
	CountryName   string  `json:"country_name"`
	IndicatorCode string  `json:"indicator_code"`
	Year          int     `json:"year"`
	Value         float64 `json:"value"`
	SourceLabel   string  `json:"source_label"`
}

type rowKey struct {
	country   string
	indicator string
	year      int
}

func (r IndicatorRow) key() rowKey {
	return rowKey{country: r.CountryCode, indicator: r.IndicatorCode, year: r.Year}
}

// ResultTable is an ordered sequence of rows. A normalized table has no
// duplicate (country_code, indicator_code, year) keys and is sorted by
// (country_code, year).
type ResultTable []IndicatorRow

// Normalize returns a new table sorted by (country_code, year) with duplicate
// keys removed, keeping the first occurrence in input order. When label is
// non-empty every row's SourceLabel is set to it. The input is not modified.
func Normalize(table ResultTable, label string) ResultTable {
	seen := make(map[rowKey]struct{}, len(table))
	out := make(ResultTable, 0, len(table))
	for _, row := range table {
		k := row.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if label != "" {
			row.SourceLabel = label
		}
		out = append(out, row)
	}

	// Stable so rows sharing (country, year) but differing by indicator keep input order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CountryCode != out[j].CountryCode {
			return out[i].CountryCode < out[j].CountryCode
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// Clone returns a copy that shares no backing array with t.
func (t ResultTable) Clone() ResultTable {
	if t == nil {
		return nil
	}
	out := make(ResultTable, len(t))
	copy(out, t)
	return out
}

// WithinYears returns the rows whose year lies in [minYear, maxYear].
func (t ResultTable) WithinYears(minYear, maxYear int) ResultTable {
	out := make(ResultTable, 0, len(t))
	for _, row := range t {
		if row.Year >= minYear && row.Year <= maxYear {
			out = append(out, row)
		}
	}
	return out
}

// Labels returns the distinct source labels in first-seen order.
func (t ResultTable) Labels() []string {
	var labels []string
	seen := make(map[string]struct{})
	for _, row := range t {
		if _, ok := seen[row.SourceLabel]; ok {
			continue
		}
		seen[row.SourceLabel] = struct{}{}
		labels = append(labels, row.SourceLabel)
	}
	return labels
}

// IsFallback reports whether any row came from reference statistics.
func (t ResultTable) IsFallback() bool {
	for _, row := range t {
		if row.SourceLabel == ReferenceLabel {
			return true
		}
	}
	return false
}

// PlausibleYear reports whether y is inside the accepted observation range.
func PlausibleYear(y int) bool {
	return y >= MinYear && y <= MaxYear
}
