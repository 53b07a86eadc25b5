// Package domain models SDG Goal 2 ("Zero Hunger") indicator data.
//
// # Indicators
//
// Indicators are identified by their SDG code (e.g. "2.2.1"). Each indicator is
// published by one or more statistical agencies, each under its own native code:
//
//	2.1.1   Prevalence of undernourishment               FAO
//	2.1.2   Moderate or severe food insecurity (FIES)    FAO
//	2.2.1   Stunting, children under 5                   UNICEF, WHO, World Bank
//	2.2.2a  Wasting, children under 5                    UNICEF, WHO, World Bank
//	2.2.2b  Overweight, children under 5                 UNICEF, WHO, World Bank
//	2.2.3   Anaemia, women aged 15-49                    WHO, World Bank
//
// The first listed agency is the indicator's default source.
//
// # Canonical rows
//
// Every agency response is translated into [IndicatorRow] values. A
// [ResultTable] never holds two rows for the same (country_code,
// indicator_code, year) key and is sorted by (country_code, year), so two
// resolutions of the same request render identically. See [Normalize].
//
// Country codes are ISO 3166-1 alpha-3 strings. The world aggregate is always
// "WORLD" regardless of the agency's own spelling ("WLD" at the World Bank and
// FAO, "GLOBAL" at WHO). Regions use upper-case pseudo-codes derived from their
// name: "Latin America & Caribbean" becomes "LATIN_AMERICA_AND_CARIBBEAN".
//
// # Provenance
//
// Every row carries a source label: the agency name for live data, or
// "Reference Statistics" when the row was built from static last-known-good
// values because no live source answered.
//
// # Value conventions
//
// Percentage values are expected in [0, 100]. Values outside that range are a
// data-quality signal rather than an error: some upstream series exceed it, so
// rows are kept and flagged in logs and metrics.
//
// Years outside 1990-2030 are treated as unparseable and the row is dropped.
package domain
