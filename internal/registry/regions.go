package registry

import (
	"strings"
)

// WorldRegion is returned by RegionFor when a country belongs to no region.
const WorldRegion = "World"

// Region is a named aggregate of ISO3 country codes.
type Region struct {
	Name    string   `json:"name"`
	Code    string   `json:"code"`
	Members []string `json:"members"`
}

// RegionCode derives the pseudo-code used as country_code for region rows:
// upper-case, spaces become underscores and "&" becomes "AND".
func RegionCode(name string) string {
	code := strings.ToUpper(strings.TrimSpace(name))
	code = strings.ReplaceAll(code, "&", "AND")
	return strings.ReplaceAll(code, " ", "_")
}

func lookupKey(s string) string {
	return strings.ReplaceAll(RegionCode(s), "-", "_")
}

// Regions is the region membership table. Regions are kept in declaration
// order; a country listed in more than one region resolves to the first.
type Regions struct {
	regions []Region
	byKey   map[string]int // lookupKey(name) -> index
}

// NewRegions builds a table from regions in declaration order.
func NewRegions(regions []Region) *Regions {
	t := &Regions{byKey: make(map[string]int, len(regions))}
	for _, r := range regions {
		r.Code = RegionCode(r.Name)
		r.Members = append([]string(nil), r.Members...)
		t.byKey[lookupKey(r.Name)] = len(t.regions)
		t.regions = append(t.regions, r)
	}
	return t
}

// DefaultRegions returns the UN regional groupings used for SDG reporting.
func DefaultRegions() *Regions {
	return NewRegions(builtinRegions())
}

// Lookup finds a region by name or pseudo-code, case-insensitively. Dashes
// and underscores are interchangeable.
func (t *Regions) Lookup(nameOrCode string) (Region, bool) {
	i, ok := t.byKey[lookupKey(nameOrCode)]
	if !ok {
		return Region{}, false
	}
	return t.regions[i], true
}

// MembersOf returns the member codes of a region, or an empty slice when the
// name is not a known region.
func (t *Regions) MembersOf(name string) []string {
	r, ok := t.Lookup(name)
	if !ok {
		return []string{}
	}
	return append([]string(nil), r.Members...)
}

// RegionFor returns the name of the first declared region containing
// countryCode, or WorldRegion.
func (t *Regions) RegionFor(countryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	for _, r := range t.regions {
		for _, m := range r.Members {
			if m == code {
				return r.Name
			}
		}
	}
	return WorldRegion
}

// List returns all regions in declaration order.
func (t *Regions) List() []Region {
	out := make([]Region, len(t.regions))
	for i, r := range t.regions {
		r.Members = append([]string(nil), r.Members...)
		out[i] = r
	}
	return out
}

func builtinRegions() []Region {
	return []Region{
		{Name: "Sub-Saharan Africa", Members: []string{
			"AGO", "BEN", "BWA", "BFA", "BDI", "CMR", "CPV", "CAF", "TCD", "COM",
			"COG", "COD", "CIV", "DJI", "GNQ", "ERI", "ETH", "GAB", "GMB", "GHA",
			"GIN", "GNB", "KEN", "LSO", "LBR", "MDG", "MWI", "MLI", "MRT", "MUS",
			"MOZ", "NAM", "NER", "NGA", "RWA", "STP", "SEN", "SYC", "SLE", "SOM",
			"ZAF", "SSD", "SDN", "SWZ", "TZA", "TGO", "UGA", "ZMB", "ZWE",
		}},
		{Name: "Southern Asia", Members: []string{"AFG", "BGD", "BTN", "IND", "IRN", "MDV", "NPL", "PAK", "LKA"}},
		{Name: "Western Asia", Members: []string{
			"ARM", "AZE", "BHR", "CYP", "GEO", "IRQ", "ISR", "JOR", "KWT", "LBN",
			"OMN", "QAT", "SAU", "PSE", "SYR", "TUR", "ARE", "YEM",
		}},
		{Name: "Latin America & Caribbean", Members: []string{
			"ATG", "ARG", "BHS", "BRB", "BLZ", "BOL", "BRA", "CHL", "COL", "CRI",
			"CUB", "DMA", "DOM", "ECU", "SLV", "GRD", "GTM", "GUY", "HTI", "HND",
			"JAM", "MEX", "NIC", "PAN", "PRY", "PER", "KNA", "LCA", "VCT", "SUR",
			"TTO", "URY", "VEN",
		}},
		{Name: "Eastern Asia", Members: []string{"CHN", "PRK", "JPN", "KOR", "MNG"}},
		{Name: "Northern Africa", Members: []string{"DZA", "EGY", "LBY", "MAR", "SDN", "TUN"}},
		{Name: "Europe & Northern America", Members: []string{
			"ALB", "AND", "AUT", "BLR", "BEL", "BIH", "BGR", "HRV", "CZE", "DNK",
			"EST", "FIN", "FRA", "DEU", "GRC", "HUN", "ISL", "IRL", "ITA", "LVA",
			"LIE", "LTU", "LUX", "MLT", "MDA", "MCO", "MNE", "NLD", "MKD", "NOR",
			"POL", "PRT", "ROU", "RUS", "SMR", "SRB", "SVK", "SVN", "ESP", "SWE",
			"CHE", "UKR", "GBR", "VAT", "CAN", "USA",
		}},
		{Name: "Oceania", Members: []string{
			"AUS", "FJI", "KIR", "MHL", "FSM", "NRU", "NZL", "PLW", "PNG", "WSM",
			"SLB", "TON", "TUV", "VUT",
		}},
	}
}
