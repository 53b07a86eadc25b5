package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(country string, year int, value float64) IndicatorRow {
	return IndicatorRow{
		CountryCode:   country,
		CountryName:   country,
		IndicatorCode: "2.2.1",
		Year:          year,
		Value:         value,
		SourceLabel:   "UNICEF",
	}
}

func TestNormalize(t *testing.T) {
	t.Run("sorts by country then year", func(t *testing.T) {
		in := ResultTable{row("KEN", 2021, 1), row("AGO", 2022, 2), row("AGO", 2020, 3)}
		out := Normalize(in, "")

		require.Len(t, out, 3)
		assert.Equal(t, "AGO", out[0].CountryCode)
		assert.Equal(t, 2020, out[0].Year)
		assert.Equal(t, 2022, out[1].Year)
		assert.Equal(t, "KEN", out[2].CountryCode)
	})

	t.Run("keeps first duplicate", func(t *testing.T) {
		in := ResultTable{row("AGO", 2020, 1), row("AGO", 2020, 99)}
		out := Normalize(in, "")

		require.Len(t, out, 1)
		assert.Equal(t, 1.0, out[0].Value)
	})

	t.Run("relabels rows", func(t *testing.T) {
		out := Normalize(ResultTable{row("AGO", 2020, 1)}, ReferenceLabel)
		assert.Equal(t, ReferenceLabel, out[0].SourceLabel)
		assert.True(t, out.IsFallback())
	})

	t.Run("does not modify input", func(t *testing.T) {
		in := ResultTable{row("KEN", 2021, 1), row("AGO", 2020, 2)}
		_ = Normalize(in, "X")
		assert.Equal(t, "KEN", in[0].CountryCode)
		assert.Equal(t, "UNICEF", in[0].SourceLabel)
	})

	t.Run("empty table", func(t *testing.T) {
		assert.Empty(t, Normalize(nil, ""))
	})
}

func TestNormalizeProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	genRow := gopter.CombineGens(
		gen.OneConstOf("AGO", "KEN", "IND", "WORLD"),
		gen.IntRange(2015, 2024),
		gen.Float64Range(0, 100),
	).Map(func(v []interface{}) IndicatorRow {
		return row(v[0].(string), v[1].(int), v[2].(float64))
	})

	properties.Property("no duplicate keys", prop.ForAll(
		func(rows []IndicatorRow) bool {
			out := Normalize(ResultTable(rows), "")
			seen := map[rowKey]bool{}
			for _, r := range out {
				if seen[r.key()] {
					return false
				}
				seen[r.key()] = true
			}
			return true
		},
		gen.SliceOf(genRow),
	))

	properties.Property("sorted by country then year", prop.ForAll(
		func(rows []IndicatorRow) bool {
			out := Normalize(ResultTable(rows), "")
			for i := 1; i < len(out); i++ {
				a, b := out[i-1], out[i]
				if a.CountryCode > b.CountryCode {
					return false
				}
				if a.CountryCode == b.CountryCode && a.Year > b.Year {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRow),
	))

	properties.Property("idempotent", prop.ForAll(
		func(rows []IndicatorRow) bool {
			once := Normalize(ResultTable(rows), "")
			twice := Normalize(once, "")
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRow),
	))

	properties.TestingRun(t)
}

func TestResultTableHelpers(t *testing.T) {
	table := ResultTable{row("AGO", 2015, 1), row("AGO", 2020, 2), row("AGO", 2025, 3)}

	within := table.WithinYears(2016, 2024)
	require.Len(t, within, 1)
	assert.Equal(t, 2020, within[0].Year)

	clone := table.Clone()
	clone[0].Value = 42
	assert.Equal(t, 1.0, table[0].Value)

	mixed := append(table.Clone(), IndicatorRow{CountryCode: "WORLD", Year: 2020, SourceLabel: ReferenceLabel})
	assert.Equal(t, []string{"UNICEF", ReferenceLabel}, mixed.Labels())
	assert.False(t, table.IsFallback())
	assert.Nil(t, ResultTable(nil).Clone())
}

func TestPlausibleYear(t *testing.T) {
	assert.True(t, PlausibleYear(1990))
	assert.True(t, PlausibleYear(2030))
	assert.False(t, PlausibleYear(1989))
	assert.False(t, PlausibleYear(2031))
}
