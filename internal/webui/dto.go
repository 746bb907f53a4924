package webui

import (
	"time"

	"vistoria/internal/datasource"
	"vistoria/internal/production"
)

const dateLayout = "2006-01-02"

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

type filterJSON struct {
	Units      []string `json:"units"`
	Inspectors []string `json:"inspectors"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Day        string   `json:"day,omitempty"`
	Token      string   `json:"token"`
}

func toFilterJSON(f production.FilterState) filterJSON {
	return filterJSON{
		Units:      nonNil(f.Units),
		Inspectors: nonNil(f.Inspectors),
		From:       fmtDate(f.From),
		To:         fmtDate(f.To),
		Day:        fmtDate(f.Day),
		Token:      f.Token,
	}
}

type optionsJSON struct {
	Units      []string `json:"units"`
	Inspectors []string `json:"inspectors"`
	MinDate    string   `json:"min_date,omitempty"`
	MaxDate    string   `json:"max_date,omitempty"`
}

type sourceJSON struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	ModTime string `json:"mod_time,omitempty"`
	Loaded  bool   `json:"loaded"`
}

type failureJSON struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type sourcesResponse struct {
	Sources  []sourceJSON  `json:"sources"`
	Selected []string      `json:"selected"`
	Failures []failureJSON `json:"failures"`
	Token    string        `json:"token"`
	LoadedAt string        `json:"loaded_at,omitempty"`
	Options  optionsJSON   `json:"options"`
}

func toSources(listed []datasource.SourceInfo, d production.MergedDataset) []sourceJSON {
	loaded := make(map[string]bool, len(d.Sources))
	for _, id := range d.Sources {
		loaded[id] = true
	}
	out := make([]sourceJSON, 0, len(listed))
	for _, s := range listed {
		sj := sourceJSON{ID: s.ID, Title: s.Title, Loaded: loaded[s.ID]}
		if !s.ModTime.IsZero() {
			sj.ModTime = s.ModTime.UTC().Format(time.RFC3339)
		}
		out = append(out, sj)
	}
	return out
}

func toFailures(fs []production.SourceFailure) []failureJSON {
	out := make([]failureJSON, 0, len(fs))
	for _, f := range fs {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		out = append(out, failureJSON{Source: f.Source, Error: msg})
	}
	return out
}

// summaryRow is one resumo row: raw figures plus the display cells in
// production.SummaryColumns order.
type summaryRow struct {
	Inspector           string   `json:"inspector"`
	ReferenceMonth      string   `json:"reference_month"`
	Unit                string   `json:"unit"`
	Type                string   `json:"type"`
	MonthlyGoal         int      `json:"monthly_goal"`
	HasGoal             bool     `json:"has_goal"`
	Inspections         int      `json:"inspections"`
	Reinspections       int      `json:"reinspections"`
	Net                 int      `json:"net"`
	ActiveDays          int      `json:"active_days"`
	WorkdaysElapsed     int      `json:"workdays_elapsed"`
	DailyGoal           float64  `json:"daily_goal"`
	Shortfall           int      `json:"shortfall"`
	RemainingWorkdays   int      `json:"remaining_workdays"`
	RequiredDailyRate   float64  `json:"required_daily_rate"`
	CurrentDailyAverage float64  `json:"current_daily_average"`
	ProjectedMonthEnd   int      `json:"projected_month_end"`
	AttainmentPct       *float64 `json:"attainment_pct"`
	Cells               []string `json:"cells"`
}

func toSummaryRow(s production.InspectorMonthSummary) summaryRow {
	row := summaryRow{
		Inspector:           s.Inspector,
		ReferenceMonth:      s.ReferenceMonth,
		Type:                s.Type().String(),
		MonthlyGoal:         s.MonthlyGoal(),
		HasGoal:             s.Goal != nil,
		Inspections:         s.Inspections,
		Reinspections:       s.Reinspections,
		Net:                 s.Net,
		ActiveDays:          s.ActiveDays,
		WorkdaysElapsed:     s.WorkdaysElapsed,
		DailyGoal:           s.DailyGoal,
		Shortfall:           s.Shortfall,
		RemainingWorkdays:   s.RemainingWorkdays,
		RequiredDailyRate:   s.RequiredDailyRate,
		CurrentDailyAverage: s.CurrentDailyAverage,
		ProjectedMonthEnd:   s.ProjectedMonthEnd,
		AttainmentPct:       s.AttainmentPct,
		Cells:               production.FormatSummaryRow(s),
	}
	if s.Goal != nil {
		row.Unit = s.Goal.Unit
	}
	return row
}

type summaryResponse struct {
	Filter  filterJSON   `json:"filter"`
	Columns []string     `json:"columns"`
	Rows    []summaryRow `json:"rows"`
}

type rankingJSON struct {
	Type   string               `json:"type"`
	Month  string               `json:"month"`
	Top    []production.RankRow `json:"top"`
	Bottom []production.RankRow `json:"bottom"`
	// Daily rankings only.
	Requested   string `json:"requested,omitempty"`
	Day         string `json:"day,omitempty"`
	Substituted bool   `json:"substituted,omitempty"`
}

func toRankingJSON(r production.Ranking) rankingJSON {
	return rankingJSON{Type: r.Type.String(), Month: r.Month, Top: r.Top, Bottom: r.Bottom}
}

type rankingResponse struct {
	Filter   filterJSON    `json:"filter"`
	Rankings []rankingJSON `json:"rankings"`
}

type dayPointJSON struct {
	Date          string `json:"date"`
	Inspections   int    `json:"inspections"`
	Reinspections int    `json:"reinspections"`
	Net           int    `json:"net"`
}

type auditJSON struct {
	VehicleID      string `json:"vehicle_id"`
	Count          int    `json:"count"`
	FirstDate      string `json:"first_date"`
	LastDate       string `json:"last_date"`
	FirstInspector string `json:"first_inspector"`
	LastInspector  string `json:"last_inspector"`
}

type insightsResponse struct {
	Filter           filterJSON             `json:"filter"`
	Totals           production.Totals      `json:"totals"`
	Month            production.MonthTotals `json:"month"`
	Daily            []dayPointJSON         `json:"daily"`
	Units            []production.UnitNet   `json:"units"`
	MultiInspections []auditJSON            `json:"multi_inspections"`
}

func toDaily(pts []production.DayPoint) []dayPointJSON {
	out := make([]dayPointJSON, 0, len(pts))
	for _, p := range pts {
		out = append(out, dayPointJSON{
			Date:          fmtDate(p.Date),
			Inspections:   p.Inspections,
			Reinspections: p.Reinspections,
			Net:           p.Net,
		})
	}
	return out
}

func toAudit(vs []production.VehicleAudit) []auditJSON {
	out := make([]auditJSON, 0, len(vs))
	for _, v := range vs {
		out = append(out, auditJSON{
			VehicleID:      v.VehicleID,
			Count:          v.Count,
			FirstDate:      fmtDate(v.FirstDate),
			LastDate:       fmtDate(v.LastDate),
			FirstInspector: v.FirstInspector,
			LastInspector:  v.LastInspector,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
