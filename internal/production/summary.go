package production

import (
	"math"
	"sort"
)

// BuildSummary applies filter to recs and summarizes the resulting view.
func BuildSummary(recs []InspectionRecord, goals []GoalRecord, filter FilterState) []InspectorMonthSummary {
	return Summarize(filter.Apply(recs), goals)
}

// Summarize produces one row per inspector in view. Each row is joined to
// the goal of the latest month the inspector has records for, projected,
// and the rows are sorted by projected month end, then net (both
// descending), then inspector.
func Summarize(view []InspectionRecord, goals []GoalRecord) []InspectorMonthSummary {
	idx := IndexGoals(goals)
	months := LatestMonths(view)
	return summarize(view, func(inspector string) (string, *GoalRecord) {
		m := months[inspector]
		return m, idx.Lookup(inspector, m)
	})
}

// SummarizeMonth summarizes only the records of month, joined to that
// month's goals. An empty month yields nothing; undated records belong to no
// month.
func SummarizeMonth(view []InspectionRecord, goals []GoalRecord, month string) []InspectorMonthSummary {
	if month == "" {
		return nil
	}
	var in []InspectionRecord
	for _, r := range view {
		if r.ReferenceMonth == month {
			in = append(in, r)
		}
	}
	idx := IndexGoals(goals)
	return summarize(in, func(inspector string) (string, *GoalRecord) {
		return month, idx.Lookup(inspector, month)
	})
}

func summarize(view []InspectionRecord, join func(string) (string, *GoalRecord)) []InspectorMonthSummary {
	wd := WorkdaysElapsed(view)
	counts := CountsByInspector(view)
	out := make([]InspectorMonthSummary, 0, len(counts))
	for _, c := range counts {
		month, goal := join(c.Inspector)
		s := InspectorMonthSummary{
			Inspector:       c.Inspector,
			ReferenceMonth:  month,
			Inspections:     c.Inspections,
			Reinspections:   c.Reinspections,
			Net:             c.Net,
			ActiveDays:      c.ActiveDays,
			Units:           c.Units,
			WorkdaysElapsed: wd[c.Inspector],
			Goal:            goal,
		}
		out = append(out, Project(s))
	}
	SortSummaries(out)
	return out
}

// Project fills the goal-derived fields of s from its counts and goal.
func Project(s InspectorMonthSummary) InspectorMonthSummary {
	goal, workdays := 0, 0
	if s.Goal != nil {
		goal, workdays = s.Goal.MonthlyGoal, s.Goal.WorkdaysInMonth
	}

	s.DailyGoal = ratio(float64(goal), workdays)
	s.Shortfall = max(goal-s.Net, 0)
	s.RemainingWorkdays = max(workdays-s.WorkdaysElapsed, 0)
	s.RequiredDailyRate = ratio(float64(s.Shortfall), s.RemainingWorkdays)
	s.CurrentDailyAverage = ratio(float64(s.Net), s.WorkdaysElapsed)
	s.ProjectedMonthEnd = int(math.RoundToEven(float64(s.Net) + s.CurrentDailyAverage*float64(s.RemainingWorkdays)))
	s.AttainmentPct = nil
	if goal > 0 {
		pct := float64(s.ProjectedMonthEnd) / float64(goal) * 100
		s.AttainmentPct = &pct
	}
	return s
}

// SortSummaries orders rows for the resumo table.
func SortSummaries(rows []InspectorMonthSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ProjectedMonthEnd != b.ProjectedMonthEnd {
			return a.ProjectedMonthEnd > b.ProjectedMonthEnd
		}
		if a.Net != b.Net {
			return a.Net > b.Net
		}
		return a.Inspector < b.Inspector
	})
}

func ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}
