package reference

// Published estimates: FAO SOFI, UNICEF/WHO/World Bank JME and WHO GHO.
const builtinAsOf = 2024

var builtinValues = map[string]map[string]float64{
	"2.1.1": {
		"WORLD":                     9.1,
		"Sub-Saharan Africa":        22.5,
		"Southern Asia":             13.1,
		"Western Asia":              12.2,
		"Latin America & Caribbean": 6.5,
		"Eastern Asia":              1.7,
		"Northern Africa":           7.8,
		"Oceania":                   5.8,
		"Europe & Northern America": 2.4,
	},
	"2.1.2": {
		"WORLD": 29.1,
	},
	"2.2.1": {
		"WORLD":                     23.2,
		"Sub-Saharan Africa":        30.7,
		"Southern Asia":             31.7,
		"Western Asia":              13.8,
		"Latin America & Caribbean": 11.3,
		"Eastern Asia":              4.8,
		"Northern Africa":           17.3,
		"Oceania":                   8.6,
		"Europe & Northern America": 2.6,
	},
	"2.2.2a": {
		"WORLD":                     6.6,
		"Sub-Saharan Africa":        7.4,
		"Southern Asia":             14.7,
		"Western Asia":              7.9,
		"Latin America & Caribbean": 1.6,
		"Eastern Asia":              2.4,
		"Northern Africa":           8.7,
		"Oceania":                   3.2,
		"Europe & Northern America": 0.7,
	},
	"2.2.2b": {
		"WORLD":                     5.5,
		"Sub-Saharan Africa":        3.2,
		"Southern Asia":             2.8,
		"Western Asia":              8.1,
		"Latin America & Caribbean": 7.5,
		"Eastern Asia":              6.8,
		"Northern Africa":           10.2,
		"Oceania":                   6.1,
		"Europe & Northern America": 12.3,
	},
	"2.2.3": {
		"WORLD":                     29.9,
		"Sub-Saharan Africa":        46.3,
		"Southern Asia":             52.5,
		"Western Asia":              32.8,
		"Latin America & Caribbean": 17.8,
		"Eastern Asia":              19.2,
		"Northern Africa":           34.1,
		"Oceania":                   25.7,
		"Europe & Northern America": 12.4,
	},
}
