package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalize prepares request text for matching: NFC normalization, trimmed
// edges, and interior whitespace collapsed to single spaces.
func normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// foldASCII lowers ASCII letters only, leaving every other byte untouched.
// Plain ToLower can change byte lengths for a handful of code points, which
// would break reading captured values back from the original-case string at
// matched offsets. The lexicon's keywords are ASCII, so ASCII folding is
// all that matching needs.
func foldASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
