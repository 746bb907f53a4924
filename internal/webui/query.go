package webui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"vistoria/internal/production"
	"vistoria/internal/textnorm"
)

// query is the per-request view parameters.
type query struct {
	filter production.FilterState
	month  string
	types  []production.GoalType
}

// parseQuery reads the filter from q and reconciles it with d. A missing
// token means the caller trusts the current dataset.
func parseQuery(q url.Values, d production.MergedDataset) (query, error) {
	var out query
	f := production.FilterState{
		Units:      upperAll(q["unit"]),
		Inspectors: upperAll(q["inspector"]),
		Token:      q.Get("token"),
	}
	if f.Token == "" {
		f.Token = d.Token
	}

	var err error
	if f.From, err = parseDay(q.Get("from")); err != nil {
		return out, fmt.Errorf("from: %w", err)
	}
	if f.To, err = parseDay(q.Get("to")); err != nil {
		return out, fmt.Errorf("to: %w", err)
	}
	if f.Day, err = parseDay(q.Get("day")); err != nil {
		return out, fmt.Errorf("day: %w", err)
	}
	out.filter = f.Reconcile(d)

	if m := q.Get("month"); m != "" {
		month, ok := production.ParseMonth(m)
		if !ok {
			return out, fmt.Errorf("month: cannot parse %q", m)
		}
		out.month = month
	}

	switch t := q.Get("type"); {
	case t == "":
		out.types = []production.GoalType{production.GoalFixed, production.GoalMobile}
	case production.ParseGoalType(t) != production.GoalUnknown:
		out.types = []production.GoalType{production.ParseGoalType(t)}
	default:
		return out, fmt.Errorf("type: unknown goal type %q", t)
	}
	return out, nil
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	d, ok := production.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("cannot parse date %q", s)
	}
	return d, nil
}

func upperAll(vals []string) []string {
	var out []string
	for _, v := range vals {
		if u := textnorm.Upper(v); u != "" {
			out = append(out, u)
		}
	}
	return out
}
