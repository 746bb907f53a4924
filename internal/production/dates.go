package production

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"vistoria/pkg/records"
)

// dateLayouts are tried in order before the generic parser. Day and month
// accept one or two digits.
var dateLayouts = []string{"2/1/2006", "2006-01-02", "2-1-2006"}

// ParseDate reads a DATA cell. It returns the date at UTC midnight and false
// for empty or unparseable values.
func ParseDate(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return time.Time{}, false
		}
		return Day(t), true
	}
	s := strings.TrimSpace(records.Stringify(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return Day(t), true
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats the "YYYY-MM" reference month of t; "" for the zero time.
func MonthKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01")
}

// IsWorkday reports whether t falls Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
