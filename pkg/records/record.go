// Package records defines the raw row representation shared by parsers,
// datasources and transformers: one map per input row keyed by column header.
package records

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Record is a single raw row. Values are whatever the source produced:
// strings for CSV and workbook cells, driver types for SQL sources.
type Record map[string]any

// String returns the value at key rendered as a string. Missing keys and nil
// values yield "". Whole floats are rendered without a fractional part so
// that numeric cells read back from SQL or spreadsheets compare equal to
// their textual form.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Has reports whether key is present (even with a nil value).
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Stringify converts a raw cell value to its textual form.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
