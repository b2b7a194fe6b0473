package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SafeKey transliterates an arbitrary string into a key safe for filesystem
// paths and store partitions: ASCII letters, digits, '.', '-' and '_'.
// Accented letters are folded to their base form; everything else becomes '_'.
func SafeKey(s string) string {
	decomposed := norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition, drop it
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
