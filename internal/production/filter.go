package production

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// FilterState is the caller-owned selection applied before aggregation.
// Empty slices and zero times mean "no restriction".
type FilterState struct {
	Units      []string
	Inspectors []string
	From, To   time.Time
	// Day is the requested daily-ranking date.
	Day time.Time
	// Token is the MergedDataset.Token the state was last reconciled with.
	Token string
}

// FilterOptions are the values a FilterState may select from.
type FilterOptions struct {
	Units      []string
	Inspectors []string
	// MinDate and MaxDate are zero when no record is dated.
	MinDate, MaxDate time.Time
}

// Options lists sorted distinct units, sorted non-empty inspectors and the
// date range of d.
func Options(d MergedDataset) FilterOptions {
	var o FilterOptions
	units := map[string]bool{}
	insp := map[string]bool{}
	for _, r := range d.Records {
		units[r.Unit] = true
		if r.Inspector != "" {
			insp[r.Inspector] = true
		}
		if !r.HasDate() {
			continue
		}
		if o.MinDate.IsZero() || r.Date.Before(o.MinDate) {
			o.MinDate = r.Date
		}
		if r.Date.After(o.MaxDate) {
			o.MaxDate = r.Date
		}
	}
	o.Units = sortedKeys(units)
	o.Inspectors = sortedKeys(insp)
	return o
}

// Reconcile returns f adjusted to d. When d covers a different source set
// than f was built for, the selection is reset; otherwise selections that
// no longer exist are dropped and the date range is clamped to the data.
func (f FilterState) Reconcile(d MergedDataset) FilterState {
	if f.Token != d.Token {
		return FilterState{Token: d.Token}
	}
	o := Options(d)
	out := FilterState{
		Units:      intersect(f.Units, o.Units),
		Inspectors: intersect(f.Inspectors, o.Inspectors),
		From:       f.From,
		To:         f.To,
		Day:        f.Day,
		Token:      d.Token,
	}
	if o.MinDate.IsZero() {
		out.From, out.To = time.Time{}, time.Time{}
		return out
	}
	if !out.From.IsZero() && out.From.Before(o.MinDate) {
		out.From = o.MinDate
	}
	if !out.To.IsZero() && out.To.After(o.MaxDate) {
		out.To = o.MaxDate
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		out.From, out.To = o.MinDate, o.MaxDate
	}
	return out
}

// Apply returns the records matching f. Undated records only pass when no
// date bound is set.
func (f FilterState) Apply(recs []InspectionRecord) []InspectionRecord {
	units := toSet(f.Units)
	insp := toSet(f.Inspectors)
	bounded := !f.From.IsZero() || !f.To.IsZero()

	out := make([]InspectionRecord, 0, len(recs))
	for _, r := range recs {
		if len(units) > 0 && !units[r.Unit] {
			continue
		}
		if len(insp) > 0 && !insp[r.Inspector] {
			continue
		}
		if bounded {
			if !r.HasDate() {
				continue
			}
			if !f.From.IsZero() && r.Date.Before(Day(f.From)) {
				continue
			}
			if !f.To.IsZero() && r.Date.After(Day(f.To)) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// SourceToken hashes a set of source IDs; order does not matter.
func SourceToken(ids []string) string {
	s := append([]string(nil), ids...)
	sort.Strings(s)
	return fmt.Sprintf("%016x", xxh3.HashString(strings.Join(s, "\x00")))
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func intersect(sel, avail []string) []string {
	if len(sel) == 0 {
		return nil
	}
	ok := toSet(avail)
	var out []string
	for _, v := range sel {
		if ok[v] {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
