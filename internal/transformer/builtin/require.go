package builtin

import (
	"vistoria/pkg/records"
)

// Require removes any record missing a non-empty value for one of Fields.
type Require struct {
	Fields []string
}

// Apply returns a filtered slice containing only records that have all
// required fields present and non-empty. The input slice is reused.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			if rec.String(f) == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// MissingColumns checks a sheet's header set. Every name in all must be
// present, and for each group in anyOf at least one member must be. The
// result lists what is missing, groups rendered as "A|B".
func MissingColumns(columns []string, all []string, anyOf ...[]string) []string {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, f := range all {
		if _, ok := have[f]; !ok {
			missing = append(missing, f)
		}
	}
	for _, group := range anyOf {
		found := false
		for _, f := range group {
			if _, ok := have[f]; ok {
				found = true
				break
			}
		}
		if !found && len(group) > 0 {
			name := group[0]
			for _, f := range group[1:] {
				name += "|" + f
			}
			missing = append(missing, name)
		}
	}
	return missing
}
