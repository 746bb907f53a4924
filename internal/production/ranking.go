package production

import (
	"sort"
	"time"
)

// RankSize is how many rows each side of a ranking shows.
const RankSize = 5

var (
	medals = []string{"🥇", "🥈", "🥉", "🏅", "🏅"}
	badges = []string{"🆘", "🪫", "🐢", "⚠️", "⚠️"}
)

// RankRow is one ranked inspector.
type RankRow struct {
	Mark      string   `json:"mark"`
	Inspector string   `json:"inspector"`
	Type      GoalType `json:"type"`
	// Goal is the monthly goal in monthly rankings and the daily goal in
	// daily ones.
	Goal          float64 `json:"goal"`
	Inspections   int     `json:"inspections"`
	Reinspections int     `json:"reinspections"`
	Net           int     `json:"net"`
	AttainmentPct float64 `json:"attainment_pct"`
}

// Ranking holds the best and worst rows of one goal type. Bottom is in
// ascending attainment order. With fewer than 2*RankSize candidates the two
// sides overlap.
type Ranking struct {
	Type   GoalType  `json:"type"`
	Month  string    `json:"month"`
	Top    []RankRow `json:"top"`
	Bottom []RankRow `json:"bottom"`
}

// MonthlyRanking ranks the summaries of month whose goal is of type t and
// positive, by inspections over monthly goal.
func MonthlyRanking(summaries []InspectorMonthSummary, t GoalType, month string) Ranking {
	var rows []RankRow
	for _, s := range summaries {
		if s.ReferenceMonth != month || s.Type() != t || s.MonthlyGoal() <= 0 {
			continue
		}
		goal := float64(s.MonthlyGoal())
		rows = append(rows, RankRow{
			Inspector:     s.Inspector,
			Type:          t,
			Goal:          goal,
			Inspections:   s.Inspections,
			Reinspections: s.Reinspections,
			Net:           s.Net,
			AttainmentPct: float64(s.Inspections) / goal * 100,
		})
	}
	return rank(t, month, rows)
}

// DayRanking is a daily ranking plus the date it was computed for.
type DayRanking struct {
	Ranking
	Requested   time.Time `json:"requested"`
	Day         time.Time `json:"day"`
	Substituted bool      `json:"substituted"`
}

// ResolveDay picks the date a daily ranking uses. A requested day with
// records is used as is; otherwise the latest dated record on or before it,
// or the latest overall when none precedes it. A zero day selects the
// latest date. It returns ErrNoDates when view has no dated record.
func ResolveDay(view []InspectionRecord, day time.Time) (time.Time, bool, error) {
	var latest, prior time.Time
	found := false
	day = Day(day)
	for _, r := range view {
		if !r.HasDate() {
			continue
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
		if day.IsZero() {
			continue
		}
		if r.Date.Equal(day) {
			found = true
		}
		if !r.Date.After(day) && r.Date.After(prior) {
			prior = r.Date
		}
	}
	switch {
	case latest.IsZero():
		return time.Time{}, false, ErrNoDates
	case day.IsZero():
		return latest, false, nil
	case found:
		return day, false, nil
	case !prior.IsZero():
		return prior, true, nil
	default:
		return latest, true, nil
	}
}

// DailyRanking ranks inspectors of type t by the inspections they made on
// the resolved day over their daily goal (monthly goal / workdays of that
// day's month).
func DailyRanking(view []InspectionRecord, goals []GoalRecord, t GoalType, day time.Time) (DayRanking, error) {
	used, substituted, err := ResolveDay(view, day)
	if err != nil {
		return DayRanking{}, err
	}
	var onDay []InspectionRecord
	for _, r := range view {
		if r.HasDate() && r.Date.Equal(used) {
			onDay = append(onDay, r)
		}
	}

	month := MonthKey(used)
	idx := IndexGoals(goals)
	var rows []RankRow
	for _, c := range CountsByInspector(onDay) {
		g := idx.Lookup(c.Inspector, month)
		if g == nil || g.Type != t || g.WorkdaysInMonth <= 0 || g.MonthlyGoal <= 0 {
			continue
		}
		daily := float64(g.MonthlyGoal) / float64(g.WorkdaysInMonth)
		rows = append(rows, RankRow{
			Inspector:     c.Inspector,
			Type:          t,
			Goal:          daily,
			Inspections:   c.Inspections,
			Reinspections: c.Reinspections,
			Net:           c.Net,
			AttainmentPct: float64(c.Inspections) / daily * 100,
		})
	}
	return DayRanking{
		Ranking:     rank(t, month, rows),
		Requested:   Day(day),
		Day:         used,
		Substituted: substituted,
	}, nil
}

func rank(t GoalType, month string, rows []RankRow) Ranking {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AttainmentPct != rows[j].AttainmentPct {
			return rows[i].AttainmentPct > rows[j].AttainmentPct
		}
		return rows[i].Inspector < rows[j].Inspector
	})

	r := Ranking{Type: t, Month: month, Top: []RankRow{}, Bottom: []RankRow{}}
	for i := 0; i < len(rows) && i < RankSize; i++ {
		row := rows[i]
		row.Mark = medals[i]
		r.Top = append(r.Top, row)
	}
	start := max(len(rows)-RankSize, 0)
	for i := len(rows) - 1; i >= start; i-- {
		row := rows[i]
		row.Mark = badges[len(r.Bottom)]
		r.Bottom = append(r.Bottom, row)
	}
	return r
}
