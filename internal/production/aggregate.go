package production

import "sort"

// InspectorCounts are the raw per-inspector production counts of a view.
type InspectorCounts struct {
	Inspector     string
	Inspections   int
	Reinspections int
	Net           int
	// ActiveDays counts distinct dates, Units distinct units touched.
	ActiveDays int
	Units      int
}

// CountsByInspector groups view by inspector, sorted by inspector.
func CountsByInspector(view []InspectionRecord) []InspectorCounts {
	type acc struct {
		c     InspectorCounts
		days  map[int64]struct{}
		units map[string]struct{}
	}
	by := map[string]*acc{}
	for _, r := range view {
		a, ok := by[r.Inspector]
		if !ok {
			a = &acc{
				c:     InspectorCounts{Inspector: r.Inspector},
				days:  map[int64]struct{}{},
				units: map[string]struct{}{},
			}
			by[r.Inspector] = a
		}
		a.c.Inspections++
		if r.IsReinspection {
			a.c.Reinspections++
		}
		if r.HasDate() {
			a.days[r.Date.Unix()] = struct{}{}
		}
		a.units[r.Unit] = struct{}{}
	}

	out := make([]InspectorCounts, 0, len(by))
	for _, a := range by {
		a.c.Net = a.c.Inspections - a.c.Reinspections
		a.c.ActiveDays = len(a.days)
		a.c.Units = len(a.units)
		out = append(out, a.c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Inspector < out[j].Inspector })
	return out
}

// WorkdaysElapsed counts, per inspector, the distinct Monday-to-Friday dates
// with at least one record. Every inspector in view has an entry, possibly 0.
func WorkdaysElapsed(view []InspectionRecord) map[string]int {
	days := map[string]map[int64]struct{}{}
	for _, r := range view {
		if _, ok := days[r.Inspector]; !ok {
			days[r.Inspector] = map[int64]struct{}{}
		}
		if r.HasDate() && IsWorkday(r.Date) {
			days[r.Inspector][r.Date.Unix()] = struct{}{}
		}
	}
	out := make(map[string]int, len(days))
	for k, v := range days {
		out[k] = len(v)
	}
	return out
}

// LatestMonths returns, per inspector, the latest reference month present in
// view. Inspectors with only undated records map to "".
func LatestMonths(view []InspectionRecord) map[string]string {
	out := map[string]string{}
	for _, r := range view {
		if cur, ok := out[r.Inspector]; !ok || r.ReferenceMonth > cur {
			out[r.Inspector] = r.ReferenceMonth
		}
	}
	return out
}

// GoalIndex looks goals up by inspector and month.
type GoalIndex map[goalKey]GoalRecord

type goalKey struct{ inspector, month string }

// IndexGoals builds a GoalIndex; later goals replace earlier ones.
func IndexGoals(goals []GoalRecord) GoalIndex {
	idx := make(GoalIndex, len(goals))
	for _, g := range goals {
		idx[goalKey{g.Inspector, g.ReferenceMonth}] = g
	}
	return idx
}

// Lookup returns the goal of inspector for month, or nil.
func (idx GoalIndex) Lookup(inspector, month string) *GoalRecord {
	if month == "" {
		return nil
	}
	g, ok := idx[goalKey{inspector, month}]
	if !ok {
		return nil
	}
	return &g
}

// JoinGoal selects the goal of the latest month inspector has records for in
// view; nil when there is none.
func JoinGoal(inspector string, view []InspectionRecord, goals GoalIndex) *GoalRecord {
	latest := ""
	for _, r := range view {
		if r.Inspector == inspector && r.ReferenceMonth > latest {
			latest = r.ReferenceMonth
		}
	}
	return goals.Lookup(inspector, latest)
}
