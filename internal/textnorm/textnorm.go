// Package textnorm canonicalises header names and cell text coming from
// hand-maintained spreadsheets, where the same column shows up as "Data",
// " DATA " or "data  " and the same unit as "Código" or "CODIGO".
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const nbsp = "\u00a0"

// Upper trims s and upper-cases it. NBSP is treated as a plain space.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, nbsp, " ")))
}

// Header upper-cases and trims a header and collapses inner whitespace runs
// to a single space: " meta   mensal " -> "META MENSAL".
func Header(s string) string {
	return strings.Join(strings.Fields(Upper(s)), " ")
}

// Fold removes diacritics (NFD, drop nonspacing marks, NFC) so that
// comparisons are accent-insensitive: "CÓDIGO" -> "CODIGO".
func Fold(s string) string {
	if s == "" {
		return s
	}
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key is the comparison key for headers and enumerated values: Header
// followed by Fold.
func Key(s string) string {
	return Fold(Header(s))
}

// Set is an accent-insensitive, case-insensitive string set.
type Set map[string]struct{}

// NewSet builds a Set from the given members.
func NewSet(members ...string) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[Key(m)] = struct{}{}
	}
	return s
}

// Contains reports whether v matches a member after canonicalisation.
func (s Set) Contains(v string) bool {
	_, ok := s[Key(v)]
	return ok
}
