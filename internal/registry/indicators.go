// Package registry holds the static lookup tables the resolver relies on:
// the SDG Goal 2 indicator catalogue, UN regional groupings, and display
// names for country codes.
package registry

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
)

// Indicators is the indicator catalogue. It is immutable after construction
// and safe for concurrent use.
type Indicators struct {
	byCode map[string]domain.IndicatorDescriptor
	codes  []string
}

// NewIndicators builds a catalogue from descriptors. Every descriptor must have
// at least one source and a native code for each listed source.
func NewIndicators(descriptors []domain.IndicatorDescriptor) (*Indicators, error) {
	ind := &Indicators{byCode: make(map[string]domain.IndicatorDescriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Code == "" {
			return nil, fmt.Errorf("indicator with empty code")
		}
		if _, dup := ind.byCode[d.Code]; dup {
			return nil, fmt.Errorf("duplicate indicator %q", d.Code)
		}
		if len(d.Sources) == 0 {
			return nil, fmt.Errorf("indicator %q has no sources", d.Code)
		}
		for _, s := range d.Sources {
			if d.NativeCodes[s] == "" {
				return nil, fmt.Errorf("indicator %q lists source %s without a native code", d.Code, s)
			}
		}
		ind.byCode[d.Code] = d
		ind.codes = append(ind.codes, d.Code)
	}
	sort.Strings(ind.codes)
	return ind, nil
}

// DefaultIndicators returns the built-in SDG Goal 2 catalogue.
func DefaultIndicators() *Indicators {
	ind, err := NewIndicators(builtinIndicators())
	if err != nil {
		panic(err) // static table
	}
	return ind
}

// Describe returns the descriptor for code.
func (r *Indicators) Describe(code string) (domain.IndicatorDescriptor, error) {
	d, ok := r.byCode[code]
	if !ok {
		return domain.IndicatorDescriptor{}, &domain.UnknownIndicatorError{Code: code}
	}
	return d, nil
}

// DefaultSource returns the first source listed for code.
func (r *Indicators) DefaultSource(code string) (domain.Source, error) {
	d, err := r.Describe(code)
	if err != nil {
		return "", err
	}
	return d.DefaultSource(), nil
}

// NativeCode returns the agency-specific series code for code at src.
func (r *Indicators) NativeCode(code string, src domain.Source) (string, error) {
	d, err := r.Describe(code)
	if err != nil {
		return "", err
	}
	if !d.Supports(src) {
		return "", &domain.UnsupportedSourceError{Indicator: code, Source: string(src)}
	}
	return d.NativeCodes[src], nil
}

// List returns every descriptor ordered by code.
func (r *Indicators) List() []domain.IndicatorDescriptor {
	out := make([]domain.IndicatorDescriptor, 0, len(r.codes))
	for _, c := range r.codes {
		out = append(out, r.byCode[c])
	}
	return out
}

func builtinIndicators() []domain.IndicatorDescriptor {
	return []domain.IndicatorDescriptor{
		{
			Code:        "2.1.1",
			Name:        "Prevalence of undernourishment",
			Unit:        domain.UnitPercentage,
			Description: "Share of the population whose habitual food consumption is insufficient to provide dietary energy levels required for a normal, active and healthy life.",
			Sources:     []domain.Source{domain.SourceFAO},
			NativeCodes: map[domain.Source]string{domain.SourceFAO: "FS_R_NUMD"},
		},
		{
			Code:        "2.1.2",
			Name:        "Prevalence of moderate or severe food insecurity",
			Unit:        domain.UnitPercentage,
			Description: "Share of the population experiencing moderate or severe food insecurity, based on the Food Insecurity Experience Scale.",
			Sources:     []domain.Source{domain.SourceFAO},
			NativeCodes: map[domain.Source]string{domain.SourceFAO: "FS_R_INSEC"},
		},
		{
			Code:        "2.2.1",
			Name:        "Prevalence of stunting among children under 5",
			Unit:        domain.UnitPercentage,
			Description: "Height-for-age below -2 standard deviations from the WHO Child Growth Standards median, children under 5.",
			Sources:     []domain.Source{domain.SourceUNICEF, domain.SourceWHO, domain.SourceWorldBank},
			NativeCodes: map[domain.Source]string{
				domain.SourceUNICEF:    "NUTR_STUNT_MOD",
				domain.SourceWHO:       "NUTSTUNTINGPREV",
				domain.SourceWorldBank: "SH.STA.STNT.ZS",
			},
		},
		{
			Code:        "2.2.2a",
			Name:        "Prevalence of wasting among children under 5",
			Unit:        domain.UnitPercentage,
			Description: "Weight-for-height below -2 standard deviations from the WHO Child Growth Standards median, children under 5.",
			Sources:     []domain.Source{domain.SourceUNICEF, domain.SourceWHO, domain.SourceWorldBank},
			NativeCodes: map[domain.Source]string{
				domain.SourceUNICEF:    "NUTR_WAST_MOD",
				domain.SourceWHO:       "NUTRITION_WH_2",
				domain.SourceWorldBank: "SH.STA.WAST.ZS",
			},
		},
		{
			Code:        "2.2.2b",
			Name:        "Prevalence of overweight among children under 5",
			Unit:        domain.UnitPercentage,
			Description: "Weight-for-height above +2 standard deviations from the WHO Child Growth Standards median, children under 5.",
			Sources:     []domain.Source{domain.SourceUNICEF, domain.SourceWHO, domain.SourceWorldBank},
			NativeCodes: map[domain.Source]string{
				domain.SourceUNICEF:    "NUTR_OVWT_MOD",
				domain.SourceWHO:       "NUTOVERWEIGHTPREV",
				domain.SourceWorldBank: "SH.STA.OWGH.ZS",
			},
		},
		{
			Code:        "2.2.3",
			Name:        "Prevalence of anaemia in women aged 15-49",
			Unit:        domain.UnitPercentage,
			Description: "Share of women of reproductive age with haemoglobin below the WHO anaemia threshold.",
			Sources:     []domain.Source{domain.SourceWHO, domain.SourceWorldBank},
			NativeCodes: map[domain.Source]string{
				domain.SourceWHO:       "NUTRITION_ANAEMIA_REPRODUCTIVEAGE_PREV",
				domain.SourceWorldBank: "SH.ANM.ALLW.ZS",
			},
		},
	}
}
