package builtin

import (
	"math"
	"strconv"
	"strings"

	"vistoria/internal/textnorm"
	"vistoria/pkg/records"
)

// Coerce converts selected fields in place. Supported kinds:
//
//   - "count": non-negative int; missing, empty or non-numeric values become 0,
//     fractional values are truncated, negatives clamp to 0.
//   - "upper": trimmed, upper-cased string; nil becomes "".
//   - "string": rendered as string; nil becomes "".
type Coerce struct {
	Types map[string]string
}

// Apply implements transformer.Transformer.
func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, kind := range c.Types {
			switch kind {
			case "count":
				r[field] = ParseCount(r[field])
			case "upper":
				r[field] = textnorm.Upper(r.String(field))
			case "string":
				r[field] = r.String(field)
			}
		}
	}
	return in
}

// ParseCount converts a raw cell into a non-negative integer. It accepts
// "20", "20.0", "20,0" and numeric driver types.
func ParseCount(v any) int {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case float64:
		f = t
	default:
		s := strings.TrimSpace(records.Stringify(v))
		if s == "" {
			return 0
		}
		if !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = p
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return int(f)
}
