// Package production turns raw inspection and goal sheets into inspector
// production figures: it normalizes rows, classifies re-inspections, resolves
// which month a goal applies to, and computes per-inspector summaries,
// projections and rankings. Every function here is a pure computation over
// immutable inputs; callers own the filter state.
package production

import (
	"time"

	"vistoria/internal/textnorm"
)

// InspectionRecord is one normalized inspection row.
type InspectionRecord struct {
	Unit string
	// Date is the zero time when the source cell was empty or unparseable.
	Date      time.Time
	VehicleID string
	Inspector string

	IsReinspection bool
	// ReferenceMonth is "YYYY-MM", or "" when Date is zero.
	ReferenceMonth string

	SourceID string
	// Seq is the row's position in its source, or in the merged dataset
	// after Merge. It breaks ordering ties.
	Seq int
}

// HasDate reports whether the record carries a parsed date.
func (r InspectionRecord) HasDate() bool { return !r.Date.IsZero() }

// GoalType is the inspector category a goal row declares.
type GoalType int

const (
	GoalUnknown GoalType = iota
	GoalFixed
	GoalMobile
)

// ParseGoalType maps a TIPO cell to a GoalType. MOVEL and MÓVEL are both
// mobile; anything unrecognized is GoalUnknown.
func ParseGoalType(s string) GoalType {
	switch textnorm.Key(s) {
	case "FIXO":
		return GoalFixed
	case "MOVEL":
		return GoalMobile
	default:
		return GoalUnknown
	}
}

func (t GoalType) String() string {
	switch t {
	case GoalFixed:
		return "FIXO"
	case GoalMobile:
		return "MÓVEL"
	default:
		return "—"
	}
}

// Label is the display form used in the resumo table.
func (t GoalType) Label() string {
	switch t {
	case GoalFixed:
		return "🏢 FIXO"
	case GoalMobile:
		return "🚗 MÓVEL"
	default:
		return "—"
	}
}

// MarshalText lets GoalType appear as its name in JSON.
func (t GoalType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// GoalRecord is one inspector's target for a reference month.
type GoalRecord struct {
	Inspector       string
	Unit            string
	Type            GoalType
	MonthlyGoal     int
	WorkdaysInMonth int
	ReferenceMonth  string
	SourceID        string
}

// InspectorMonthSummary is the derived production row of one inspector.
// Goal is nil when no goal matched; goal-derived fields are then zero and
// AttainmentPct is nil.
type InspectorMonthSummary struct {
	Inspector      string
	ReferenceMonth string

	Inspections     int
	Reinspections   int
	Net             int
	ActiveDays      int
	Units           int
	WorkdaysElapsed int

	Goal *GoalRecord

	DailyGoal           float64
	Shortfall           int
	RemainingWorkdays   int
	RequiredDailyRate   float64
	CurrentDailyAverage float64
	ProjectedMonthEnd   int
	AttainmentPct       *float64
}

// MonthlyGoal returns the joined goal's monthly target, or 0.
func (s InspectorMonthSummary) MonthlyGoal() int {
	if s.Goal == nil {
		return 0
	}
	return s.Goal.MonthlyGoal
}

// Type returns the joined goal's type, or GoalUnknown.
func (s InspectorMonthSummary) Type() GoalType {
	if s.Goal == nil {
		return GoalUnknown
	}
	return s.Goal.Type
}
