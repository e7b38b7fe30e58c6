package records

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLen matches the title column width in every record store.
const MaxTitleLen = 255

// NormalizeTitle drops control characters, collapses whitespace to single
// spaces and cuts the result to MaxTitleLen runes.
func NormalizeTitle(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > MaxTitleLen {
		s = strings.TrimSpace(string([]rune(s)[:MaxTitleLen]))
	}
	return s
}
