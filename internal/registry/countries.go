package registry

import (
	"strings"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
)

var countryNames = map[string]string{
	domain.WorldCode: "World",
	"AGO":            "Angola",
	"BGD":            "Bangladesh",
	"BRA":            "Brazil",
	"CHN":            "China",
	"DEU":            "Germany",
	"EGY":            "Egypt",
	"ETH":            "Ethiopia",
	"GBR":            "United Kingdom",
	"IDN":            "Indonesia",
	"IND":            "India",
	"IRN":            "Iran",
	"JPN":            "Japan",
	"KEN":            "Kenya",
	"MEX":            "Mexico",
	"NGA":            "Nigeria",
	"PAK":            "Pakistan",
	"PHL":            "Philippines",
	"RUS":            "Russia",
	"SDN":            "Sudan",
	"THA":            "Thailand",
	"TUR":            "Turkey",
	"USA":            "United States",
	"VNM":            "Vietnam",
}

// CountryName returns a display name for a country or region code. Region
// pseudo-codes resolve to the region name; unknown codes are echoed back.
func (t *Regions) CountryName(code string) string {
	key := strings.ToUpper(strings.TrimSpace(code))
	if name, ok := countryNames[key]; ok {
		return name
	}
	if r, ok := t.Lookup(key); ok {
		return r.Name
	}
	return code
}
