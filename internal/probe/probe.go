// Package probe diagnoses a source before it is trusted: which raw headers
// map to which canonical columns, what is missing, and how many rows would
// survive normalization. Output is either "header,canonical,filled" lines or
// an indented JSON report.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"vistoria/internal/datasource"
	"vistoria/internal/production"
	"vistoria/pkg/records"
)

// Options control the probe.
type Options struct {
	// Source is the ID to probe.
	Source string
	// Title is used to resolve the goal month; the listed title when empty.
	Title string
	// OutputJSON toggles the JSON report; otherwise CSV summary lines.
	OutputJSON bool
}

// Column is one raw header of a sheet.
type Column struct {
	Header    string `json:"header"`
	Canonical string `json:"canonical"`
	// Filled counts rows with a non-empty value.
	Filled int `json:"filled"`
}

// Report is the diagnosis of one source.
type Report struct {
	Source       string   `json:"source"`
	Rows         int      `json:"rows"`
	Columns      []Column `json:"columns"`
	Missing      []string `json:"missing,omitempty"`
	Kept         int      `json:"kept"`
	BannedUnits  int      `json:"banned_units"`
	DateFailures int      `json:"date_failures"`
	Months       []string `json:"months"`

	GoalRows    int      `json:"goal_rows"`
	GoalColumns []Column `json:"goal_columns,omitempty"`
	GoalMissing []string `json:"goal_missing,omitempty"`
	Goals       int      `json:"goals"`
	GoalMonths  []string `json:"goal_months,omitempty"`
}

// Result returns the rendered output and the report behind it.
type Result struct {
	Body   []byte
	Report Report
}

// Probe fetches opt.Source through f and diagnoses it. Schema problems are
// part of the report, not errors; fetch failures are returned.
func Probe(ctx context.Context, f datasource.Fetcher, opt Options) (Result, error) {
	rep := Report{Source: opt.Source, Months: []string{}}
	if opt.Title == "" {
		opt.Title = listedTitle(ctx, f, opt.Source)
	}

	raw, err := f.FetchRecords(ctx, opt.Source)
	if err != nil {
		return Result{Report: rep}, err
	}
	rep.Rows = len(raw)
	rep.Columns = columns(raw, production.RecordHeader)

	recs, stats, err := production.Normalize(opt.Source, raw)
	var se *production.SchemaError
	switch {
	case errors.As(err, &se):
		rep.Missing = se.Missing
	case err != nil:
		return Result{Report: rep}, err
	}
	rep.Kept, rep.BannedUnits, rep.DateFailures = stats.Kept, stats.BannedUnits, stats.DateFailures
	recs = production.Classify(recs)
	rep.Months = months(recs)

	rawGoals, err := f.FetchGoals(ctx, opt.Source)
	if err != nil {
		return Result{Report: rep}, err
	}
	rep.GoalRows = len(rawGoals)
	rep.GoalColumns = columns(rawGoals, production.GoalHeader)
	goals, err := production.NormalizeGoals(rawGoals, production.GoalContext{
		SourceID: opt.Source,
		Title:    opt.Title,
		Records:  recs,
	})
	se = nil
	switch {
	case errors.As(err, &se):
		rep.GoalMissing = se.Missing
	case err != nil:
		return Result{Report: rep}, err
	}
	rep.Goals = len(goals)
	seen := map[string]bool{}
	for _, g := range goals {
		if !seen[g.ReferenceMonth] {
			seen[g.ReferenceMonth] = true
			rep.GoalMonths = append(rep.GoalMonths, g.ReferenceMonth)
		}
	}
	sort.Strings(rep.GoalMonths)

	body, err := Render(rep, opt.OutputJSON)
	if err != nil {
		return Result{Report: rep}, err
	}
	return Result{Body: body, Report: rep}, nil
}

// Render formats rep as JSON or as CSV-like lines: one
// "header,canonical,filled" line per column, goal columns prefixed with
// "METAS:", then "#"-prefixed missing and count lines.
func Render(rep Report, asJSON bool) ([]byte, error) {
	if asJSON {
		b, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	}

	var buf bytes.Buffer
	for _, c := range rep.Columns {
		fmt.Fprintf(&buf, "%s,%s,%d\n", c.Header, c.Canonical, c.Filled)
	}
	for _, c := range rep.GoalColumns {
		fmt.Fprintf(&buf, "METAS:%s,%s,%d\n", c.Header, c.Canonical, c.Filled)
	}
	for _, m := range rep.Missing {
		fmt.Fprintf(&buf, "# missing %s\n", m)
	}
	for _, m := range rep.GoalMissing {
		fmt.Fprintf(&buf, "# missing METAS:%s\n", m)
	}
	fmt.Fprintf(&buf, "# rows=%d kept=%d banned_units=%d date_failures=%d goals=%d\n",
		rep.Rows, rep.Kept, rep.BannedUnits, rep.DateFailures, rep.Goals)
	return buf.Bytes(), nil
}

// columns lists the raw headers of rows in sorted order with their
// canonical name and fill count.
func columns(rows []records.Record, canonical func(string) string) []Column {
	filled := map[string]int{}
	for _, r := range rows {
		for k, v := range r {
			if _, ok := filled[k]; !ok {
				filled[k] = 0
			}
			if records.Stringify(v) != "" {
				filled[k]++
			}
		}
	}
	out := make([]Column, 0, len(filled))
	for h, n := range filled {
		out = append(out, Column{Header: h, Canonical: canonical(h), Filled: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Header < out[j].Header })
	return out
}

// listedTitle finds id's title in the listing; "" when unlisted or the
// listing fails.
func listedTitle(ctx context.Context, f datasource.Fetcher, id string) string {
	infos, err := f.List(ctx)
	if err != nil {
		return ""
	}
	for _, s := range infos {
		if s.ID == id {
			return s.Title
		}
	}
	return ""
}

func months(recs []production.InspectionRecord) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range recs {
		if r.ReferenceMonth != "" && !seen[r.ReferenceMonth] {
			seen[r.ReferenceMonth] = true
			out = append(out, r.ReferenceMonth)
		}
	}
	sort.Strings(out)
	return out
}
