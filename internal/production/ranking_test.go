package production

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMonthlyRanking(t *testing.T) {
	t.Parallel()

	var summaries []InspectorMonthSummary
	// Inspections 1..7 against a goal of 10 for FIXO; one MÓVEL; one without goal.
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		summaries = append(summaries, InspectorMonthSummary{
			Inspector: name, ReferenceMonth: "2024-05", Inspections: i + 1, Net: i + 1,
			Goal: &GoalRecord{Inspector: name, Type: GoalFixed, MonthlyGoal: 10, ReferenceMonth: "2024-05"},
		})
	}
	summaries = append(summaries,
		InspectorMonthSummary{Inspector: "M", ReferenceMonth: "2024-05", Inspections: 3,
			Goal: &GoalRecord{Type: GoalMobile, MonthlyGoal: 2}},
		InspectorMonthSummary{Inspector: "Z", ReferenceMonth: "2024-05", Inspections: 50,
			Goal: &GoalRecord{Type: GoalFixed, MonthlyGoal: 0}},
		InspectorMonthSummary{Inspector: "OLD", ReferenceMonth: "2024-04", Inspections: 50,
			Goal: &GoalRecord{Type: GoalFixed, MonthlyGoal: 1}},
	)

	r := MonthlyRanking(summaries, GoalFixed, "2024-05")
	names := func(rows []RankRow) (out []string) {
		for _, row := range rows {
			out = append(out, row.Mark+row.Inspector)
		}
		return out
	}
	if diff := cmp.Diff([]string{"🥇G", "🥈F", "🥉E", "🏅D", "🏅C"}, names(r.Top)); diff != "" {
		t.Errorf("top (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"🆘A", "🪫B", "🐢C", "⚠️D", "⚠️E"}, names(r.Bottom)); diff != "" {
		t.Errorf("bottom (-want +got):\n%s", diff)
	}
	if r.Top[0].AttainmentPct != 70 || r.Top[0].Goal != 10 {
		t.Errorf("top row = %+v", r.Top[0])
	}

	m := MonthlyRanking(summaries, GoalMobile, "2024-05")
	if len(m.Top) != 1 || len(m.Bottom) != 1 || m.Top[0].AttainmentPct != 150 {
		t.Errorf("mobile ranking = %+v", m)
	}
	if e := MonthlyRanking(summaries, GoalMobile, "2023-01"); len(e.Top) != 0 || e.Top == nil {
		t.Errorf("empty ranking = %+v", e)
	}
}

func TestMonthlyRankingTiesByName(t *testing.T) {
	t.Parallel()

	g := &GoalRecord{Type: GoalFixed, MonthlyGoal: 4}
	r := MonthlyRanking([]InspectorMonthSummary{
		{Inspector: "BETA", ReferenceMonth: "m", Inspections: 2, Goal: g},
		{Inspector: "ALFA", ReferenceMonth: "m", Inspections: 2, Goal: g},
	}, GoalFixed, "m")
	if r.Top[0].Inspector != "ALFA" || r.Top[1].Inspector != "BETA" {
		t.Errorf("top = %+v", r.Top)
	}
}

func dailyFixture(t *testing.T) ([]InspectionRecord, []GoalRecord) {
	t.Helper()
	view := []InspectionRecord{
		{Inspector: "JOAO", VehicleID: "A", Date: day(t, "2024-05-02")},
		{Inspector: "JOAO", VehicleID: "B", Date: day(t, "2024-05-03")},
		{Inspector: "JOAO", VehicleID: "A", Date: day(t, "2024-05-03"), IsReinspection: true},
		{Inspector: "MARIA", VehicleID: "C", Date: day(t, "2024-05-03")},
		{Inspector: "ANA", VehicleID: "D", Date: day(t, "2024-05-03")},
		{Inspector: "SEM", VehicleID: "E"},
	}
	goals := []GoalRecord{
		{Inspector: "JOAO", Type: GoalFixed, MonthlyGoal: 40, WorkdaysInMonth: 20, ReferenceMonth: "2024-05"},
		{Inspector: "MARIA", Type: GoalFixed, MonthlyGoal: 22, WorkdaysInMonth: 22, ReferenceMonth: "2024-05"},
		{Inspector: "ANA", Type: GoalFixed, MonthlyGoal: 10, WorkdaysInMonth: 0, ReferenceMonth: "2024-05"},
	}
	return view, goals
}

func TestDailyRanking(t *testing.T) {
	t.Parallel()
	view, goals := dailyFixture(t)

	r, err := DailyRanking(view, goals, GoalFixed, day(t, "2024-05-03"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Substituted || !r.Day.Equal(day(t, "2024-05-03")) {
		t.Errorf("day = %v substituted=%v", r.Day, r.Substituted)
	}
	want := []RankRow{
		{Mark: "🥇", Inspector: "JOAO", Type: GoalFixed, Goal: 2, Inspections: 2, Reinspections: 1, Net: 1, AttainmentPct: 100},
		{Mark: "🥈", Inspector: "MARIA", Type: GoalFixed, Goal: 1, Inspections: 1, Net: 1, AttainmentPct: 100},
	}
	if diff := cmp.Diff(want, r.Top); diff != "" {
		t.Errorf("top (-want +got):\n%s", diff)
	}
}

func TestDailyRankingFallsBack(t *testing.T) {
	t.Parallel()
	view, goals := dailyFixture(t)

	tests := []struct {
		name, requested, want string
		substituted           bool
	}{
		{"weekend after data", "2024-05-05", "2024-05-03", true},
		{"exact date", "2024-05-02", "2024-05-02", false},
		{"before all data", "2024-04-01", "2024-05-03", true},
	}
	for _, tt := range tests {
		r, err := DailyRanking(view, goals, GoalFixed, day(t, tt.requested))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !r.Day.Equal(day(t, tt.want)) || r.Substituted != tt.substituted {
			t.Errorf("%s: day %s substituted %v, want %s %v", tt.name,
				r.Day.Format("2006-01-02"), r.Substituted, tt.want, tt.substituted)
		}
		if !r.Requested.Equal(day(t, tt.requested)) {
			t.Errorf("%s: requested = %v", tt.name, r.Requested)
		}
	}
}

func TestDailyRankingNoDates(t *testing.T) {
	t.Parallel()

	_, err := DailyRanking([]InspectionRecord{{Inspector: "X"}}, nil, GoalFixed, day(t, "2024-05-01"))
	if !errors.Is(err, ErrNoDates) {
		t.Fatalf("err = %v, want ErrNoDates", err)
	}
}
