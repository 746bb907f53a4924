// Package builtin contains the reusable row transformers applied to raw
// inspection and goal sheets before they are turned into typed records.
package builtin

import (
	"strings"

	"vistoria/pkg/records"
)

const nbspace = "\u00a0"

// Normalize replaces NO-BREAK SPACE with a plain space and trims string
// values. Spreadsheet exports routinely pad names and plates with NBSP.
// Records are mutated in place.
type Normalize struct{}

// Apply implements transformer.Transformer.
func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if strings.Contains(s, nbspace) {
				s = strings.ReplaceAll(s, nbspace, " ")
			}
			r[k] = strings.TrimSpace(s)
		}
	}
	return in
}
