package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, which removes
// Vietnamese diacritics. Recomposing to NFC keeps the output canonical.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds an employee display name into a canonical comparison key:
// diacritics stripped, lowercased, whitespace removed. Idempotent, so
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks, name)
	if err != nil {
		out = name
	}
	// đ/Đ are standalone letters, not combining marks, so NFD leaves them.
	out = strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		}
		return r
	}, out)
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), "")
}
