package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks, so "Lážně" becomes "Lazne".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldName normalises a name for case and accent insensitive comparison.
func FoldName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(StripAccents(s)), " "))
}
