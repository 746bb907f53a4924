package production

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vistoria/internal/textnorm"
	"vistoria/internal/transformer"
	"vistoria/internal/transformer/builtin"
	"vistoria/pkg/records"
)

// Canonical goal sheet headers.
const (
	ColInspector   = "VISTORIADOR"
	ColType        = "TIPO"
	ColMonthlyGoal = "META_MENSAL"
	ColWorkdays    = "DIAS_UTEIS"
	ColMonth       = "MES"
	ColYear        = "ANO"
	ColRefMonth    = "REF_MONTH"
)

// goalAliases are the header spellings seen in goal sheets.
var goalAliases = map[string]string{
	"META_MENSAL":  ColMonthlyGoal,
	"META MENSAL":  ColMonthlyGoal,
	"META MEN SAL": ColMonthlyGoal,
	"META_MEN SAL": ColMonthlyGoal,
	"META_MEN.SAL": ColMonthlyGoal,
	"META MENSA":   ColMonthlyGoal,
	"DIAS UTEIS":   ColWorkdays,
	"DIAS ÚTEIS":   ColWorkdays,
	"DIAS_UTEIS":   ColWorkdays,
	"MÊS":          ColMonth,
	"REF MONTH":    ColRefMonth,
	"MESREF":       ColRefMonth,
	"MES REF":      ColRefMonth,
	"MES_REF":      ColRefMonth,
}

// titleMonth matches "MM/YYYY" in a sheet title; -, _ and . are accepted as
// separators too.
var titleMonth = regexp.MustCompile(`(\d{2})[/\-_.](\d{4})`)

// GoalContext carries what month resolution needs besides the rows.
type GoalContext struct {
	SourceID string
	// Title is the source's human name, e.g. "09/2025 - VISTORIAS".
	Title string
	// Records are the source's normalized inspections.
	Records []InspectionRecord
	// Now is the last-resort month; time.Now when nil.
	Now func() time.Time
}

// NormalizeGoals turns raw goal rows into GoalRecords. The reference month
// of a row is, in order of precedence: its MES+ANO or REF_MONTH columns, a
// MM/YYYY pattern in the title, the most frequent month among the source's
// dated records (ties to the earliest), the current month.
//
// Rows without an inspector are dropped. Duplicate (inspector, month) rows
// keep the last one. A sheet without a VISTORIADOR column yields a
// *SchemaError; no rows yield no goals.
func NormalizeGoals(raw []records.Record, gc GoalContext) ([]GoalRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	cloned := make([]records.Record, len(raw))
	for i, r := range raw {
		cloned[i] = r.Clone()
	}
	rows := transformer.Chain{
		builtin.Normalize{},
		builtin.Canonicalize{Aliases: goalAliases},
	}.Apply(cloned)

	if missing := builtin.MissingColumns(builtin.Columns(rows), []string{ColInspector}); len(missing) > 0 {
		return nil, &SchemaError{Source: gc.SourceID, Sheet: "METAS", Missing: missing}
	}

	rows = builtin.Coerce{Types: map[string]string{
		ColInspector:   "upper",
		ColUnit:        "upper",
		ColType:        "upper",
		ColMonthlyGoal: "count",
		ColWorkdays:    "count",
	}}.Apply(rows)
	rows = builtin.Require{Fields: []string{ColInspector}}.Apply(rows)

	fallback := lazyMonth(gc)
	for _, r := range rows {
		month, ok := rowMonth(r)
		if !ok {
			month = fallback()
		}
		r[ColRefMonth] = month
	}
	rows = builtin.DeDup{Keys: []string{ColInspector, ColRefMonth}, Policy: "keep-last"}.Apply(rows)

	out := make([]GoalRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, GoalRecord{
			Inspector:       r.String(ColInspector),
			Unit:            r.String(ColUnit),
			Type:            ParseGoalType(r.String(ColType)),
			MonthlyGoal:     r[ColMonthlyGoal].(int),
			WorkdaysInMonth: r[ColWorkdays].(int),
			ReferenceMonth:  r.String(ColRefMonth),
			SourceID:        gc.SourceID,
		})
	}
	return out, nil
}

// lazyMonth returns a memoized resolver for the sheet-level fallback month.
func lazyMonth(gc GoalContext) func() string {
	var month string
	return func() string {
		if month == "" {
			month = SheetMonth(gc)
		}
		return month
	}
}

// SheetMonth resolves the month of goal rows that carry none themselves.
func SheetMonth(gc GoalContext) string {
	if m, ok := TitleMonth(gc.Title); ok {
		return m
	}
	if m := DominantMonth(gc.Records); m != "" {
		return m
	}
	now := time.Now
	if gc.Now != nil {
		now = gc.Now
	}
	return MonthKey(now())
}

// TitleMonth extracts the first valid MM/YYYY in title as "YYYY-MM".
func TitleMonth(title string) (string, bool) {
	for _, m := range titleMonth.FindAllStringSubmatch(title, -1) {
		if key, ok := monthKey(m[2], m[1]); ok {
			return key, true
		}
	}
	return "", false
}

// DominantMonth returns the most frequent month among dated records, the
// earliest on ties, or "" when none is dated.
func DominantMonth(recs []InspectionRecord) string {
	counts := map[string]int{}
	for _, r := range recs {
		if r.HasDate() {
			counts[MonthKey(r.Date)]++
		}
	}
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)
	best := ""
	for _, m := range months {
		if best == "" || counts[m] > counts[best] {
			best = m
		}
	}
	return best
}

// rowMonth reads an explicit month from MES+ANO or REF_MONTH.
func rowMonth(r records.Record) (string, bool) {
	if y, m := r.String(ColYear), r.String(ColMonth); y != "" && m != "" {
		if key, ok := monthKey(y, m); ok {
			return key, true
		}
	}
	return ParseMonth(r[ColRefMonth])
}

// ParseMonth reads "YYYY-MM", "MM/YYYY", "MM-YYYY" or a date value as a
// reference month.
func ParseMonth(v any) (string, bool) {
	if t, ok := v.(time.Time); ok {
		return MonthKey(t), !t.IsZero()
	}
	s := strings.TrimSpace(records.Stringify(v))
	if s == "" {
		return "", false
	}
	for _, sep := range []string{"-", "/", "."} {
		a, b, ok := strings.Cut(s, sep)
		if !ok {
			continue
		}
		if len(a) == 4 {
			b, _, _ = strings.Cut(b, sep)
			return monthKey(a, b)
		}
		return monthKey(b, a)
	}
	return "", false
}

var monthNames = map[string]int{
	"JANEIRO": 1, "FEVEREIRO": 2, "MARCO": 3, "ABRIL": 4, "MAIO": 5, "JUNHO": 6,
	"JULHO": 7, "AGOSTO": 8, "SETEMBRO": 9, "OUTUBRO": 10, "NOVEMBRO": 11, "DEZEMBRO": 12,
}

func monthKey(year, month string) (string, bool) {
	y, ok := wholeNumber(year)
	if !ok || y < 1900 || y > 9999 {
		return "", false
	}
	m, ok := wholeNumber(month)
	if !ok {
		m = monthNames[textnorm.Key(month)]
	}
	if m < 1 || m > 12 {
		return "", false
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"), true
}

var foldedGoalAliases = func() map[string]string {
	m := make(map[string]string, len(goalAliases))
	for from, to := range goalAliases {
		m[textnorm.Key(from)] = to
	}
	return m
}()

// RecordHeader is the canonical inspection column a raw header maps to.
func RecordHeader(h string) string { return builtin.Canonicalize{}.Name(h, nil) }

// GoalHeader is the canonical goal column a raw header maps to.
func GoalHeader(h string) string { return builtin.Canonicalize{}.Name(h, foldedGoalAliases) }

// wholeNumber reads "5", "5.0" or "5,0" as 5. Fractional values are rejected.
func wholeNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.Abs(f) > 1e6 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
