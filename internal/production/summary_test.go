package production

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummarizeCounts(t *testing.T) {
	t.Parallel()

	recs := classified(t,
		rec("P1", "2024-05-02", "A1", "JOAO"),
		rec("P1", "2024-05-05", "A1", "JOAO"),
		rec("P2", "2024-05-03", "B2", "MARIA"),
	)
	rows := Summarize(recs, nil)

	joao := find(t, rows, "JOAO")
	if joao.Inspections != 2 || joao.Reinspections != 1 || joao.Net != 1 {
		t.Errorf("JOAO = %d/%d/%d, want 2/1/1", joao.Inspections, joao.Reinspections, joao.Net)
	}
	if joao.ActiveDays != 2 || joao.WorkdaysElapsed != 1 || joao.Units != 1 {
		t.Errorf("JOAO days = active %d, workdays %d, units %d; want 2, 1, 1", joao.ActiveDays, joao.WorkdaysElapsed, joao.Units)
	}
	maria := find(t, rows, "MARIA")
	if maria.Inspections != 1 || maria.Reinspections != 0 || maria.Net != 1 {
		t.Errorf("MARIA = %d/%d/%d, want 1/0/1", maria.Inspections, maria.Reinspections, maria.Net)
	}
	for _, r := range rows {
		if r.Net != r.Inspections-r.Reinspections {
			t.Errorf("%s: net %d != %d - %d", r.Inspector, r.Net, r.Inspections, r.Reinspections)
		}
	}
}

func TestProjectScenario(t *testing.T) {
	t.Parallel()

	goal := &GoalRecord{Inspector: "JOAO", MonthlyGoal: 20, WorkdaysInMonth: 20, ReferenceMonth: "2024-05"}
	got := Project(InspectorMonthSummary{Inspector: "JOAO", Net: 10, Inspections: 10, WorkdaysElapsed: 10, Goal: goal})

	want := InspectorMonthSummary{
		Inspector: "JOAO", Net: 10, Inspections: 10, WorkdaysElapsed: 10, Goal: goal,
		DailyGoal: 1, Shortfall: 10, RemainingWorkdays: 10, RequiredDailyRate: 1,
		CurrentDailyAverage: 1, ProjectedMonthEnd: 20, AttainmentPct: f64(100),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Project mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectWithoutGoal(t *testing.T) {
	t.Parallel()

	got := Project(InspectorMonthSummary{Net: 5, Inspections: 5, WorkdaysElapsed: 3})
	if got.MonthlyGoal() != 0 || got.AttainmentPct != nil || got.Shortfall != 0 {
		t.Errorf("goal %d, pct %v, shortfall %d; want 0, nil, 0", got.MonthlyGoal(), got.AttainmentPct, got.Shortfall)
	}
	if got.ProjectedMonthEnd != 5 {
		t.Errorf("ProjectedMonthEnd = %d, want 5", got.ProjectedMonthEnd)
	}
}

func TestProjectNoElapsedWorkdays(t *testing.T) {
	t.Parallel()

	got := Project(InspectorMonthSummary{Net: 7, Goal: &GoalRecord{MonthlyGoal: 20, WorkdaysInMonth: 20}})
	if got.ProjectedMonthEnd != got.Net {
		t.Errorf("ProjectedMonthEnd = %d, want net %d", got.ProjectedMonthEnd, got.Net)
	}
	if got.CurrentDailyAverage != 0 || got.RequiredDailyRate != 13.0/20 {
		t.Errorf("avg %v, required %v", got.CurrentDailyAverage, got.RequiredDailyRate)
	}
}

func TestProjectRoundsHalfToEven(t *testing.T) {
	t.Parallel()

	// 5 + 2.5*1 = 7.5 -> 8; 3 + 1.5*1 = 4.5 -> 4
	a := Project(InspectorMonthSummary{Net: 5, WorkdaysElapsed: 2, Goal: &GoalRecord{MonthlyGoal: 10, WorkdaysInMonth: 3}})
	b := Project(InspectorMonthSummary{Net: 3, WorkdaysElapsed: 2, Goal: &GoalRecord{MonthlyGoal: 10, WorkdaysInMonth: 3}})
	if a.ProjectedMonthEnd != 8 || b.ProjectedMonthEnd != 4 {
		t.Errorf("projected = %d, %d; want 8, 4", a.ProjectedMonthEnd, b.ProjectedMonthEnd)
	}
}

func TestAttainmentNilIffNoGoal(t *testing.T) {
	t.Parallel()

	for _, g := range []*GoalRecord{nil, {MonthlyGoal: 0, WorkdaysInMonth: 5}, {MonthlyGoal: 1}} {
		s := Project(InspectorMonthSummary{Net: 2, Goal: g})
		if (s.AttainmentPct == nil) != (s.MonthlyGoal() == 0) {
			t.Errorf("goal %+v: pct %v", g, s.AttainmentPct)
		}
	}
}

func TestSummarizeJoinsLatestMonthGoal(t *testing.T) {
	t.Parallel()

	recs := classified(t,
		rec("P1", "2024-04-29", "A1", "JOAO"),
		rec("P1", "2024-05-02", "B1", "JOAO"),
		rec("P1", "2024-04-30", "C1", "MARIA"),
	)
	goals := []GoalRecord{
		{Inspector: "JOAO", MonthlyGoal: 40, WorkdaysInMonth: 20, ReferenceMonth: "2024-04", Type: GoalFixed},
		{Inspector: "JOAO", MonthlyGoal: 50, WorkdaysInMonth: 22, ReferenceMonth: "2024-05", Type: GoalFixed, Unit: "POSTO 1"},
		{Inspector: "MARIA", MonthlyGoal: 30, WorkdaysInMonth: 22, ReferenceMonth: "2024-05"},
	}
	rows := Summarize(recs, goals)

	joao := find(t, rows, "JOAO")
	if joao.ReferenceMonth != "2024-05" || joao.MonthlyGoal() != 50 {
		t.Errorf("JOAO joined %s/%d, want 2024-05/50", joao.ReferenceMonth, joao.MonthlyGoal())
	}
	maria := find(t, rows, "MARIA")
	if maria.Goal != nil {
		t.Errorf("MARIA joined %+v, want no goal (her data is April)", maria.Goal)
	}

	if g := JoinGoal("JOAO", recs, IndexGoals(goals)); g == nil || g.MonthlyGoal != 50 {
		t.Errorf("JoinGoal = %+v", g)
	}
}

func TestSummarySortOrder(t *testing.T) {
	t.Parallel()

	rows := []InspectorMonthSummary{
		{Inspector: "C", ProjectedMonthEnd: 10, Net: 3},
		{Inspector: "B", ProjectedMonthEnd: 10, Net: 3},
		{Inspector: "A", ProjectedMonthEnd: 10, Net: 5},
		{Inspector: "D", ProjectedMonthEnd: 12, Net: 1},
	}
	SortSummaries(rows)
	var got []string
	for _, r := range rows {
		got = append(got, r.Inspector)
	}
	if diff := cmp.Diff([]string{"D", "A", "B", "C"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestWorkdaysElapsedKeepsZeroInspectors(t *testing.T) {
	t.Parallel()

	view := []InspectionRecord{
		{Inspector: "SAB", Date: day(t, "2024-05-04")},
		{Inspector: "NULO"},
		{Inspector: "SEG", Date: day(t, "2024-05-06")},
		{Inspector: "SEG", Date: day(t, "2024-05-06")},
		{Inspector: "SEG", Date: day(t, "2024-05-07")},
	}
	want := map[string]int{"SAB": 0, "NULO": 0, "SEG": 2}
	if diff := cmp.Diff(want, WorkdaysElapsed(view)); diff != "" {
		t.Errorf("WorkdaysElapsed (-want +got):\n%s", diff)
	}
}

func TestBuildSummaryAppliesFilter(t *testing.T) {
	t.Parallel()

	recs := classified(t,
		rec("P1", "2024-05-02", "A1", "JOAO"),
		rec("P2", "2024-05-03", "B2", "MARIA"),
	)
	rows := BuildSummary(recs, nil, FilterState{Units: []string{"P2"}})
	if len(rows) != 1 || rows[0].Inspector != "MARIA" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestSummarizeMonthSkipsUndated(t *testing.T) {
	t.Parallel()

	recs := classified(t,
		rec("P1", "", "A1", "JOAO"),
		rec("P1", "2024-05-02", "B1", "JOAO"),
		rec("P1", "", "C1", "MARIA"),
	)
	if got := SummarizeMonth(recs, nil, ""); got != nil {
		t.Errorf("SummarizeMonth(\"\") = %+v, want nil", got)
	}
	got := SummarizeMonth(recs, nil, "2024-05")
	if len(got) != 1 || got[0].Inspector != "JOAO" || got[0].Inspections != 1 {
		t.Errorf("SummarizeMonth(2024-05) = %+v", got)
	}
}
