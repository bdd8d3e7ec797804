package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form of a description used for all
// equality comparisons: canonical decomposition (NFD), combining
// diacritical marks (U+0300–U+036F) stripped, lower-cased, trimmed.
//
// Two descriptions are "the same" iff their normalized forms are
// identical strings. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036F {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(strings.ToLower(b.String()))
}
