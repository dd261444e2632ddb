package reference

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugFold strips combining marks so accented letters survive as their
// base form instead of collapsing into hyphens.
var slugFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify lowercases s and maps every character that is not a letter,
// digit, hyphen or underscore to a hyphen. Runs of hyphens are kept;
// anchors derived from paths stay reversible that way. Edge hyphens are
// trimmed.
func slugify(s string) string {
	folded, _, err := transform.String(slugFold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
