package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CanonicalKey normalizes a string for case- and accent-insensitive matching:
// diacritics are stripped, casing is folded, and interior whitespace is
// collapsed to single spaces. "Café  MÜLLER" and "cafe muller" share a key.
func CanonicalKey(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	stripper := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	if stripped, _, err := transform.String(stripper, value); err == nil {
		value = stripped
	}
	value = cases.Fold().String(value)
	return strings.Join(strings.Fields(value), " ")
}

// TitleCase converts a string to title casing using language-neutral rules.
func TitleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und).String(value)
}
