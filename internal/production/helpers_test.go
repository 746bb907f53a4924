package production

import (
	"testing"
	"time"

	"vistoria/pkg/records"
)

func day(tb testing.TB, s string) time.Time {
	tb.Helper()
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		tb.Fatalf("bad test date %q: %v", s, err)
	}
	return t
}

func rec(unit, date, chassi, perito string) records.Record {
	return records.Record{"Unidade": unit, "Data": date, "Chassi": chassi, "Perito": perito}
}

// classified normalizes and classifies raw rows of a single source.
func classified(tb testing.TB, raw ...records.Record) []InspectionRecord {
	tb.Helper()
	recs, _, err := Normalize("src", raw)
	if err != nil {
		tb.Fatalf("Normalize: %v", err)
	}
	return Classify(recs)
}

func find(tb testing.TB, rows []InspectorMonthSummary, inspector string) InspectorMonthSummary {
	tb.Helper()
	for _, r := range rows {
		if r.Inspector == inspector {
			return r
		}
	}
	tb.Fatalf("no summary for %q in %+v", inspector, rows)
	return InspectorMonthSummary{}
}

func f64(v float64) *float64 { return &v }
