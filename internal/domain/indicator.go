package domain

// Unit is the measurement unit of an indicator's values.
type Unit string

const (
	UnitPercentage Unit = "Percentage"
	UnitCount      Unit = "Count"
	UnitIndex      Unit = "Index"
)

// IndicatorDescriptor describes one SDG indicator and where it is published.
// Descriptors are defined at process start and never mutated.
type IndicatorDescriptor struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Unit        Unit              `json:"unit"`
	Description string            `json:"description"`
	Sources     []Source          `json:"sources"`      // ordered; first is the default
	NativeCodes map[Source]string `json:"native_codes"` // agency-specific series code
}

// DefaultSource returns the first listed source.
func (d IndicatorDescriptor) DefaultSource() Source {
	if len(d.Sources) == 0 {
		return ""
	}
	return d.Sources[0]
}

// Supports reports whether the indicator is published by s.
func (d IndicatorDescriptor) Supports(s Source) bool {
	for _, src := range d.Sources {
		if src == s {
			return true
		}
	}
	return false
}
