package resolver

import (
	"sort"
	"strings"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
)

// area is one requested code. Regions carry their member list and are
// reported under their pseudo-code.
type area struct {
	code    string
	name    string
	members []string
}

func (a area) isRegion() bool { return len(a.members) > 0 }

// expand classifies requested codes into literal codes and regions,
// dropping duplicates.
func (r *Resolver) expand(countries []string) []area {
	seen := make(map[string]struct{}, len(countries))
	out := make([]area, 0, len(countries))
	for _, c := range countries {
		a := area{code: strings.ToUpper(c)}
		if region, ok := r.regions.Lookup(c); ok {
			a = area{code: region.Code, name: region.Name, members: region.Members}
		}
		if _, dup := seen[a.code]; dup {
			continue
		}
		seen[a.code] = struct{}{}
		out = append(out, a)
	}
	return out
}

// fetchCodes lists the codes sent to the adapter: literal codes as given and
// every member of each requested region, without duplicates.
func fetchCodes(areas []area) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(code string) {
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	for _, a := range areas {
		if !a.isRegion() {
			add(a.code)
			continue
		}
		for _, m := range a.members {
			add(m)
		}
	}
	return out
}

// aggregate keeps rows of literally requested codes and folds member rows of
// each requested region into one unweighted mean per year.
func aggregate(areas []area, rows domain.ResultTable, label string) domain.ResultTable {
	literal := make(map[string]bool)
	for _, a := range areas {
		if !a.isRegion() {
			literal[a.code] = true
		}
	}

	out := make(domain.ResultTable, 0, len(rows))
	for _, row := range rows {
		if literal[row.CountryCode] {
			out = append(out, row)
		}
	}

	for _, a := range areas {
		if !a.isRegion() {
			continue
		}
		out = append(out, regionRows(a, rows, label)...)
	}
	return out
}

func regionRows(a area, rows domain.ResultTable, label string) domain.ResultTable {
	members := make(map[string]bool, len(a.members))
	for _, m := range a.members {
		members[m] = true
	}

	type acc struct {
		sum   float64
		count int
	}
	byYear := make(map[int]*acc)
	indicator := ""
	for _, row := range rows {
		if !members[row.CountryCode] {
			continue
		}
		indicator = row.IndicatorCode
		y, ok := byYear[row.Year]
		if !ok {
			y = &acc{}
			byYear[row.Year] = y
		}
		y.sum += row.Value
		y.count++
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make(domain.ResultTable, 0, len(years))
	for _, y := range years {
		out = append(out, domain.IndicatorRow{
			CountryCode:   a.code,
			CountryName:   a.name,
			IndicatorCode: indicator,
			Year:          y,
			Value:         byYear[y].sum / float64(byYear[y].count),
			SourceLabel:   label,
		})
	}
	return out
}
