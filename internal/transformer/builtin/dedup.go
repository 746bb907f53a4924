package builtin

import (
	"sort"
	"strings"

	"vistoria/internal/textnorm"
	"vistoria/pkg/records"
)

// DeDup collapses records sharing a key and picks one winner per key:
//
//   - "keep-first"   : earliest occurrence
//   - "keep-last"    : latest occurrence (default); goal sheets edited by hand
//     often repeat an inspector, and the lower row is the correction
//   - "most-complete": most non-empty fields; ties go to the later record
//
// Keys are built from the listed fields rendered as strings; with FoldKeys
// they are also upper-cased and accent-folded. Records missing a key field
// are passed through after the winners, in input order.
type DeDup struct {
	Keys     []string
	Policy   string
	FoldKeys bool
}

// Apply returns a new slice; winners keep the position of the winning row.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[string]slot, len(in))
	var passthrough []int

	for i, r := range in {
		key, ok := d.keyOf(r)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		prev, exists := winners[key]
		switch policy {
		case "keep-first":
			if !exists {
				winners[key] = slot{index: i}
			}
		case "most-complete":
			s := slot{index: i, score: completeness(r)}
			if !exists || s.score >= prev.score {
				winners[key] = s
			}
		default:
			winners[key] = slot{index: i}
		}
	}

	idx := make([]int, 0, len(winners))
	for _, s := range winners {
		idx = append(idx, s.index)
	}
	sort.Ints(idx)

	out := make([]records.Record, 0, len(idx)+len(passthrough))
	for _, i := range idx {
		out = append(out, in[i])
	}
	for _, i := range passthrough {
		out = append(out, in[i])
	}
	return out
}

func (d DeDup) keyOf(r records.Record) (string, bool) {
	var b strings.Builder
	for i, k := range d.Keys {
		v, ok := r[k]
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		s := records.Stringify(v)
		if d.FoldKeys {
			s = textnorm.Key(s)
		}
		b.WriteString(s)
	}
	return b.String(), true
}

func completeness(r records.Record) int {
	n := 0
	for _, v := range r {
		if records.Stringify(v) != "" {
			n++
		}
	}
	return n
}
