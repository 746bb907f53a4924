package builtin

import (
	"sort"

	"vistoria/internal/textnorm"
	"vistoria/pkg/records"
)

// Canonicalize re-keys every record by its canonical header: upper-cased,
// trimmed, inner whitespace collapsed. Aliases maps known header variants to
// the canonical name; alias keys are matched accent-insensitively, so
// "DIAS ÚTEIS" and "DIAS UTEIS" resolve through a single entry.
//
// When two source headers collapse to the same canonical name, the
// right-most non-empty value wins.
type Canonicalize struct {
	Aliases map[string]string
}

// Apply returns new record maps; the input maps are left untouched.
func (c Canonicalize) Apply(in []records.Record) []records.Record {
	aliases := make(map[string]string, len(c.Aliases))
	for from, to := range c.Aliases {
		aliases[textnorm.Key(from)] = to
	}

	out := make([]records.Record, 0, len(in))
	for _, r := range in {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		// Deterministic collision handling regardless of map order.
		sort.Strings(keys)

		nr := make(records.Record, len(r))
		for _, k := range keys {
			name := c.Name(k, aliases)
			v := r[k]
			if prev, ok := nr[name]; ok && records.Stringify(v) == "" && records.Stringify(prev) != "" {
				continue
			}
			nr[name] = v
		}
		out = append(out, nr)
	}
	return out
}

// Name resolves a single header using a pre-folded alias table.
func (c Canonicalize) Name(header string, folded map[string]string) string {
	h := textnorm.Header(header)
	if to, ok := folded[textnorm.Fold(h)]; ok {
		return to
	}
	return h
}

// Columns returns the sorted union of keys across rows.
func Columns(in []records.Record) []string {
	seen := map[string]struct{}{}
	for _, r := range in {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
