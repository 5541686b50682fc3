// Package textproc provides the tolerant text comparison used for grading
// free-text answers: accent, case, punctuation and whitespace insensitive.
package textproc

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes characters and removes their combining marks,
// turning "é" into "e" and so on.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a string, removes accents and punctuation, and
// collapses every whitespace run (line breaks included) into a single space.
// It is total on valid input and idempotent; the empty string maps to itself.
func Normalize(raw string) string {
	s, _, err := transform.String(stripMarks, raw)
	if err != nil {
		s = raw
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// GentleDistance is the Levenshtein distance between the normalized forms of
// both strings, so "Ah ! Non !" and "Ah! Non!" are at distance zero.
func GentleDistance(a, b string) int {
	return levenshtein.ComputeDistance(Normalize(a), Normalize(b))
}
