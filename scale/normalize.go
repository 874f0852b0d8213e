package scale

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lower builds a fresh Caser per call; Casers are stateful and must not be
// shared between goroutines.
func lower(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(s)
}

// fold strips diacritics, lower-cases and collapses whitespace so that
// "  Média ", "MEDIA" and "média" share one lookup key.
func fold(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}
	return strings.Join(strings.Fields(lower(stripped)), " ")
}

// capitalize lower-cases s and upper-cases its first letter.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lowered := lower(s)
	r, size := utf8.DecodeRuneInString(lowered)
	return string(unicode.ToUpper(r)) + lowered[size:]
}
