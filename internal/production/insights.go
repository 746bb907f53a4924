package production

import (
	"sort"
	"time"
)

// Totals are the headline counters of a view.
type Totals struct {
	Inspections      int     `json:"inspections"`
	Reinspections    int     `json:"reinspections"`
	Net              int     `json:"net"`
	ReinspectionRate float64 `json:"reinspection_pct"`
}

// ComputeTotals sums view. The rate is 0 for an empty view.
func ComputeTotals(view []InspectionRecord) Totals {
	var t Totals
	for _, r := range view {
		t.Inspections++
		if r.IsReinspection {
			t.Reinspections++
		}
	}
	t.Net = t.Inspections - t.Reinspections
	if t.Inspections > 0 {
		t.ReinspectionRate = 100 * float64(t.Reinspections) / float64(t.Inspections)
	}
	return t
}

// DayPoint is one day of the daily evolution series.
type DayPoint struct {
	Date          time.Time `json:"date"`
	Inspections   int       `json:"inspections"`
	Reinspections int       `json:"reinspections"`
	Net           int       `json:"net"`
}

// DailySeries counts dated records per day, ascending.
func DailySeries(view []InspectionRecord) []DayPoint {
	by := map[time.Time]*DayPoint{}
	for _, r := range view {
		if !r.HasDate() {
			continue
		}
		p, ok := by[r.Date]
		if !ok {
			p = &DayPoint{Date: r.Date}
			by[r.Date] = p
		}
		p.Inspections++
		if r.IsReinspection {
			p.Reinspections++
		}
	}
	out := make([]DayPoint, 0, len(by))
	for _, p := range by {
		p.Net = p.Inspections - p.Reinspections
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// UnitNet is the net production of one unit.
type UnitNet struct {
	Unit string `json:"unit"`
	Net  int    `json:"net"`
}

// ByUnit sums net production per unit, highest first, then by unit.
func ByUnit(view []InspectionRecord) []UnitNet {
	net := map[string]int{}
	for _, r := range view {
		n := net[r.Unit]
		if !r.IsReinspection {
			n++
		}
		net[r.Unit] = n
	}
	out := make([]UnitNet, 0, len(net))
	for u, n := range net {
		out = append(out, UnitNet{Unit: u, Net: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Net != out[j].Net {
			return out[i].Net > out[j].Net
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// VehicleAudit describes a vehicle inspected more than once.
type VehicleAudit struct {
	VehicleID      string    `json:"vehicle_id"`
	Count          int       `json:"count"`
	FirstDate      time.Time `json:"first_date"`
	LastDate       time.Time `json:"last_date"`
	FirstInspector string    `json:"first_inspector"`
	LastInspector  string    `json:"last_inspector"`
}

// MultiInspections lists vehicles with two or more records in view, most
// inspected first, then by vehicle. First and last follow classifier order;
// dates are zero when none of the vehicle's records is dated.
func MultiInspections(view []InspectionRecord) []VehicleAudit {
	ordered := make([]InspectionRecord, len(view))
	copy(ordered, view)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.HasDate() != b.HasDate() {
			return !a.HasDate()
		}
		return a.Date.Before(b.Date)
	})

	by := map[string]*VehicleAudit{}
	var keys []string
	for _, r := range ordered {
		a, ok := by[r.VehicleID]
		if !ok {
			a = &VehicleAudit{VehicleID: r.VehicleID, FirstInspector: r.Inspector}
			by[r.VehicleID] = a
			keys = append(keys, r.VehicleID)
		}
		a.Count++
		a.LastInspector = r.Inspector
		if r.HasDate() {
			if a.FirstDate.IsZero() {
				a.FirstDate = r.Date
			}
			a.LastDate = r.Date
		}
	}

	var out []VehicleAudit
	for _, k := range keys {
		if by[k].Count >= 2 {
			out = append(out, *by[k])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].VehicleID < out[j].VehicleID
	})
	return out
}

// LatestMonth is the month of the latest dated record in view, or "".
func LatestMonth(view []InspectionRecord) string {
	var latest time.Time
	for _, r := range view {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return MonthKey(latest)
}

// MonthTotals consolidates one month's summaries.
type MonthTotals struct {
	Month         string   `json:"month"`
	GoalSum       int      `json:"goal_sum"`
	Inspections   int      `json:"inspections"`
	Reinspections int      `json:"reinspections"`
	Net           int      `json:"net"`
	AttainmentPct *float64 `json:"attainment_pct"`
}

// ConsolidateMonth sums the summaries of month. Attainment is inspections
// over the goal sum, nil when no goal is set.
func ConsolidateMonth(summaries []InspectorMonthSummary, month string) MonthTotals {
	t := MonthTotals{Month: month}
	for _, s := range summaries {
		if s.ReferenceMonth != month {
			continue
		}
		t.GoalSum += s.MonthlyGoal()
		t.Inspections += s.Inspections
		t.Reinspections += s.Reinspections
		t.Net += s.Net
	}
	if t.GoalSum > 0 {
		pct := float64(t.Inspections) / float64(t.GoalSum) * 100
		t.AttainmentPct = &pct
	}
	return t
}
