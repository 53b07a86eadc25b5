package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/prober"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderResolve(w io.Writer, format, indicator string, rows domain.ResultTable) error {
	if format == outputJSON {
		sources := rows.Labels()
		if sources == nil {
			sources = []string{}
		}
		return renderJSON(w, httpadapter.ResolveResponse{
			Indicator: indicator,
			Rows:      rows,
			Fallback:  rows.IsFallback(),
			Sources:   sources,
		})
	}

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	t := newTable(w, table.Row{"Country", "Name", "Indicator", "Year", "Value", "Source"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.CountryCode, r.CountryName, r.IndicatorCode, r.Year, strconv.FormatFloat(r.Value, 'f', -1, 64), r.SourceLabel})
	}
	t.Render()
	if rows.IsFallback() {
		_, _ = fmt.Fprintln(w, "Source unavailable; values are reference statistics.")
	}
	return nil
}

func renderProbe(w io.Writer, format string, statuses []prober.Status) error {
	if format == outputJSON {
		return renderJSON(w, statuses)
	}
	t := newTable(w, table.Row{"Source", "Reachable", "Latency", "Detail"})
	for _, s := range statuses {
		reachable := "no"
		if s.Reachable {
			reachable = "yes"
		}
		t.AppendRow(table.Row{s.Label, reachable, s.Latency.Round(time.Millisecond), s.Detail})
	}
	t.Render()
	return nil
}

func renderIndicators(w io.Writer, format string, descs []domain.IndicatorDescriptor) error {
	if format == outputJSON {
		return renderJSON(w, descs)
	}
	t := newTable(w, table.Row{"Code", "Name", "Unit", "Sources"})
	for _, d := range descs {
		labels := make([]string, len(d.Sources))
		for i, s := range d.Sources {
			labels[i] = s.Label()
		}
		t.AppendRow(table.Row{d.Code, d.Name, d.Unit, strings.Join(labels, ", ")})
	}
	t.Render()
	return nil
}

func renderCountries(w io.Writer, format string, list []domain.Country, fromSource bool) error {
	if format == outputJSON {
		if list == nil {
			list = []domain.Country{}
		}
		return renderJSON(w, httpadapter.CountriesResponse{Countries: list, Fallback: !fromSource})
	}
	t := newTable(w, table.Row{"Code", "Name", "Region", "Income level"})
	for _, c := range list {
		t.AppendRow(table.Row{c.Code, c.Name, c.Region, c.IncomeLevel})
	}
	t.Render()
	if !fromSource {
		_, _ = fmt.Fprintln(w, "World Bank unavailable; countries from the built-in region table.")
	}
	return nil
}

func renderRegions(w io.Writer, format string, regions []registry.Region) error {
	if format == outputJSON {
		return renderJSON(w, regions)
	}
	t := newTable(w, table.Row{"Region", "Code", "Members"})
	for _, r := range regions {
		t.AppendRow(table.Row{r.Name, r.Code, len(r.Members)})
	}
	t.Render()
	return nil
}

func renderMembers(w io.Writer, format string, regions *registry.Regions, name string) error {
	members := regions.MembersOf(name)
	if format == outputJSON {
		return renderJSON(w, members)
	}
	if len(members) == 0 {
		_, _ = fmt.Fprintf(w, "%s: no members\n", name)
		return nil
	}
	t := newTable(w, table.Row{"Code", "Name"})
	for _, m := range members {
		t.AppendRow(table.Row{m, regions.CountryName(m)})
	}
	t.Render()
	return nil
}
