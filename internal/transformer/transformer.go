// Package transformer defines the row-level transformation contract used
// between parsing and typed normalisation. Each step receives the rows of one
// sheet and returns the rows that continue down the chain.
package transformer

import "vistoria/pkg/records"

// Transformer is a single step over the rows of one sheet.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every step in order, feeding each the previous output.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Func adapts a plain function to the Transformer interface.
type Func func([]records.Record) []records.Record

// Apply calls f.
func (f Func) Apply(in []records.Record) []records.Record { return f(in) }
