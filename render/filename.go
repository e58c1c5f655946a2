package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeFileName folds name to a portable file name: accents are
// stripped, spaces become underscores and anything outside [A-Za-z0-9_-]
// is dropped. An empty result becomes "untitled".
func SanitizeFileName(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(fold, strings.TrimSpace(name))
	if err != nil {
		folded = name
	}

	var b strings.Builder

	for _, r := range folded {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "untitled"
	}

	return b.String()
}
