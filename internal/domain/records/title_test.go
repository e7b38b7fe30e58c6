package records

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Blood test March", NormalizeTitle("  Blood\x00 test\n\tMarch "))
	assert.Equal(t, "", NormalizeTitle("\x07\x1b"))

	long := NormalizeTitle(strings.Repeat("a", 600) + "\x07.png")
	assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(long))
	assert.Equal(t, strings.Repeat("a", MaxTitleLen), long)

	assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(NormalizeTitle(strings.Repeat("é", 300))))
}
