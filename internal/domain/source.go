package domain

import (
	"strings"
)

// Source identifies a statistical agency that publishes indicator data.
type Source string

const (
	SourceFAO       Source = "fao"
	SourceUNICEF    Source = "unicef"
	SourceWHO       Source = "who"
	SourceWorldBank Source = "world_bank"
)

// ReferenceLabel is the provenance label for rows built from reference statistics.
const ReferenceLabel = "Reference Statistics"

// AllSources lists every known agency in display order.
func AllSources() []Source {
	return []Source{SourceFAO, SourceUNICEF, SourceWHO, SourceWorldBank}
}

// Label returns the human-readable agency name used as a row's source label.
func (s Source) Label() string {
	switch s {
	case SourceFAO:
		return "FAO"
	case SourceUNICEF:
		return "UNICEF"
	case SourceWHO:
		return "WHO"
	case SourceWorldBank:
		return "World Bank"
	default:
		return string(s)
	}
}

// Known reports whether s is one of the four supported agencies.
func (s Source) Known() bool {
	switch s {
	case SourceFAO, SourceUNICEF, SourceWHO, SourceWorldBank:
		return true
	}
	return false
}

// ParseSource maps a user-supplied source name to a Source. It accepts the
// canonical identifiers as well as common spellings ("World Bank", "worldbank",
// "world-bank"), case-insensitively. Unknown names are returned as-is with
// ok=false so callers can report them.
func ParseSource(name string) (Source, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	if n == "worldbank" {
		n = string(SourceWorldBank)
	}
	s := Source(n)
	return s, s.Known()
}
