// Package normalize provides the accent and case insensitive comparison
// used to match free text against reference data.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Text lower-cases s, trims surrounding whitespace and strips diacritics,
// so "  Pão " and "pao" normalize to the same string.
func Text(s string) string {
	s = strings.TrimSpace(s)

	// Transformers keep state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	return cases.Lower(language.Und).String(stripped)
}

// Equal reports whether a and b are the same after normalization.
func Equal(a, b string) bool {
	return Text(a) == Text(b)
}
