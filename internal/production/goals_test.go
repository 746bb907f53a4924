package production

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vistoria/pkg/records"
)

func fixedNow() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }

func TestNormalizeGoalsHeaderAliases(t *testing.T) {
	t.Parallel()

	headers := []string{"META_MENSAL", "META MEN SAL", "META_MEN SAL", "META_MEN.SAL", "META MENSA", "meta  mensal"}
	days := []string{"DIAS UTEIS", "DIAS ÚTEIS", "DIAS_UTEIS", "dias úteis", "DIAS UTEIS", "DIAS_UTEIS"}
	for i, h := range headers {
		raw := []records.Record{{"Vistoriador": "joao", h: "20", days[i]: "22"}}
		got, err := NormalizeGoals(raw, GoalContext{SourceID: "s", Title: "05/2024", Now: fixedNow})
		if err != nil {
			t.Fatalf("%q: %v", h, err)
		}
		if len(got) != 1 || got[0].MonthlyGoal != 20 || got[0].WorkdaysInMonth != 22 {
			t.Errorf("%q/%q: got %+v", h, days[i], got)
		}
	}
}

func TestNormalizeGoals(t *testing.T) {
	t.Parallel()

	raw := []records.Record{
		{"VISTORIADOR": " joao ", "UNIDADE": "posto 1", "TIPO": "fixo", "META_MENSAL": "20", "DIAS UTEIS": "20"},
		{"VISTORIADOR": "maria", "UNIDADE": "", "TIPO": "Movel", "META_MENSAL": "abc", "DIAS UTEIS": 21.0},
		{"VISTORIADOR": "ana", "TIPO": "MÓVEL", "META_MENSAL": "-4", "DIAS UTEIS": ""},
		{"VISTORIADOR": "", "TIPO": "FIXO", "META_MENSAL": "99"},
		{"VISTORIADOR": "bia", "TIPO": "home office", "META_MENSAL": "10,0"},
	}
	got, err := NormalizeGoals(raw, GoalContext{SourceID: "maio", Title: "VISTORIAS 05/2024", Now: fixedNow})
	if err != nil {
		t.Fatalf("NormalizeGoals: %v", err)
	}
	want := []GoalRecord{
		{Inspector: "JOAO", Unit: "POSTO 1", Type: GoalFixed, MonthlyGoal: 20, WorkdaysInMonth: 20, ReferenceMonth: "2024-05", SourceID: "maio"},
		{Inspector: "MARIA", Type: GoalMobile, MonthlyGoal: 0, WorkdaysInMonth: 21, ReferenceMonth: "2024-05", SourceID: "maio"},
		{Inspector: "ANA", Type: GoalMobile, ReferenceMonth: "2024-05", SourceID: "maio"},
		{Inspector: "BIA", Type: GoalUnknown, MonthlyGoal: 10, ReferenceMonth: "2024-05", SourceID: "maio"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("goals mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeGoalsDuplicatesLastWins(t *testing.T) {
	t.Parallel()

	raw := []records.Record{
		{"VISTORIADOR": "JOAO", "META_MENSAL": "10"},
		{"VISTORIADOR": "MARIA", "META_MENSAL": "5"},
		{"VISTORIADOR": "joao ", "META_MENSAL": "30"},
	}
	got, err := NormalizeGoals(raw, GoalContext{Title: "06/2024"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d goals, want 2: %+v", len(got), got)
	}
	for _, g := range got {
		if g.Inspector == "JOAO" && g.MonthlyGoal != 30 {
			t.Errorf("JOAO goal = %d, want 30 (last row)", g.MonthlyGoal)
		}
	}
}

func TestNormalizeGoalsAccentedNamesStayDistinct(t *testing.T) {
	t.Parallel()

	raw := []records.Record{
		{"VISTORIADOR": "JOÃO", "META_MENSAL": "20"},
		{"VISTORIADOR": "JOAO", "META_MENSAL": "30"},
	}
	got, err := NormalizeGoals(raw, GoalContext{SourceID: "s", Title: "05/2024"})
	if err != nil {
		t.Fatal(err)
	}
	want := []GoalRecord{
		{Inspector: "JOÃO", MonthlyGoal: 20, ReferenceMonth: "2024-05", SourceID: "s"},
		{Inspector: "JOAO", MonthlyGoal: 30, ReferenceMonth: "2024-05", SourceID: "s"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("goals (-want +got):\n%s", diff)
	}

	view := []InspectionRecord{{Inspector: "JOÃO", Unit: "U", VehicleID: "A1", Date: day(t, "2024-05-02"), ReferenceMonth: "2024-05"}}
	rows := Summarize(view, got)
	if len(rows) != 1 || rows[0].Goal == nil || rows[0].Goal.MonthlyGoal != 20 {
		t.Errorf("JOÃO summary = %+v, want goal 20", rows)
	}
}

func TestNormalizeGoalsMonthPrecedence(t *testing.T) {
	t.Parallel()

	data := []InspectionRecord{
		{Date: day(t, "2024-04-30")},
		{Date: day(t, "2024-05-02")},
		{Date: day(t, "2024-05-03")},
		{},
	}
	tests := []struct {
		name  string
		row   records.Record
		title string
		recs  []InspectionRecord
		want  string
	}{
		{"mes+ano columns", records.Record{"MÊS": "2", "ANO": "2023"}, "05/2024", data, "2023-02"},
		{"month name", records.Record{"MES": "março", "ANO": "2023"}, "05/2024", data, "2023-03"},
		{"ref_month column", records.Record{"REF_MONTH": "2022-11"}, "05/2024", data, "2022-11"},
		{"mesref mm/yyyy", records.Record{"MESREF": "07/2022"}, "05/2024", data, "2022-07"},
		{"numeric text cells", records.Record{"MES": "5.0", "ANO": "2024.0"}, "06/2024", data, "2024-05"},
		{"numeric cells", records.Record{"MES": 5.0, "ANO": 2024.0}, "06/2024", data, "2024-05"},
		{"comma decimal cells", records.Record{"MES": "11,0", "ANO": "2023"}, "06/2024", data, "2023-11"},
		{"fractional month falls to title", records.Record{"MES": "5.5", "ANO": "2024"}, "06/2024", data, "2024-06"},
		{"invalid explicit falls to title", records.Record{"MES": "13", "ANO": "2023"}, "09-2025 metas", data, "2025-09"},
		{"title underscore", records.Record{}, "METAS_08_2024", data, "2024-08"},
		{"title invalid month skipped", records.Record{}, "lote 99/2024 ref 10.2024", data, "2024-10"},
		{"dominant data month", records.Record{}, "METAS", data, "2024-05"},
		{"clock", records.Record{}, "METAS", nil, "2025-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.row.Clone()
			row["VISTORIADOR"] = "X"
			got, err := NormalizeGoals([]records.Record{row}, GoalContext{Title: tt.title, Records: tt.recs, Now: fixedNow})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0].ReferenceMonth != tt.want {
				t.Errorf("got %+v, want month %s", got, tt.want)
			}
		})
	}
}

func TestDominantMonthTiesToEarliest(t *testing.T) {
	t.Parallel()

	recs := []InspectionRecord{
		{Date: day(t, "2024-06-01")},
		{Date: day(t, "2024-05-01")},
		{Date: day(t, "2024-06-02")},
		{Date: day(t, "2024-05-02")},
	}
	if got := DominantMonth(recs); got != "2024-05" {
		t.Errorf("DominantMonth = %q, want 2024-05", got)
	}
	if got := DominantMonth(nil); got != "" {
		t.Errorf("DominantMonth(nil) = %q", got)
	}
}

func TestNormalizeGoalsSchemaError(t *testing.T) {
	t.Parallel()

	_, err := NormalizeGoals([]records.Record{{"NOME": "x", "META_MENSAL": 1}}, GoalContext{SourceID: "s"})
	var se *SchemaError
	if !errors.As(err, &se) || se.Sheet != "METAS" {
		t.Fatalf("err = %v, want *SchemaError on METAS", err)
	}
	got, err := NormalizeGoals(nil, GoalContext{})
	if err != nil || got != nil {
		t.Fatalf("NormalizeGoals(nil) = %v, %v", got, err)
	}
}

func TestParseGoalType(t *testing.T) {
	t.Parallel()

	tests := map[string]GoalType{
		"FIXO": GoalFixed, " fixo ": GoalFixed, "MÓVEL": GoalMobile, "movel": GoalMobile,
		"": GoalUnknown, "outro": GoalUnknown,
	}
	for in, want := range tests {
		if got := ParseGoalType(in); got != want {
			t.Errorf("ParseGoalType(%q) = %v, want %v", in, got, want)
		}
	}
	if GoalMobile.String() != "MÓVEL" || GoalUnknown.Label() != "—" || GoalFixed.Label() != "🏢 FIXO" {
		t.Error("unexpected GoalType rendering")
	}
}
