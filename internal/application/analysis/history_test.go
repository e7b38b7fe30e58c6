package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/medibridge/carepipe/internal/domain/records"
)

func recs(texts ...string) []*records.Record {
	out := make([]*records.Record, 0, len(texts))
	for i, t := range texts {
		out = append(out, &records.Record{ID: records.RecordID(rune('a' + i)), Title: "R" + string(rune('1'+i)), ExtractedText: t})
	}
	return out
}

func TestBuildHistoryUnbounded(t *testing.T) {
	h := BuildHistory(recs("one", "two"), 0)
	assert.Equal(t, "Title: R1\nExtracted Data: one\n\n---\n\nTitle: R2\nExtracted Data: two", h.Text)
	assert.Equal(t, 2, h.Included)
	assert.Equal(t, 2, h.Total)
	assert.False(t, h.Truncated)
}

func TestBuildHistoryEmpty(t *testing.T) {
	h := BuildHistory(nil, 100)
	assert.Empty(t, h.Text)
	assert.Zero(t, h.Total)
	assert.False(t, h.Truncated)
}

func TestBuildHistoryExactFit(t *testing.T) {
	full := BuildHistory(recs("one", "two"), 0)
	h := BuildHistory(recs("one", "two"), len(full.Text))
	assert.Equal(t, full.Text, h.Text)
	assert.False(t, h.Truncated)
}

func TestBuildHistoryTruncates(t *testing.T) {
	h := BuildHistory(recs(strings.Repeat("a", 100), strings.Repeat("b", 100), strings.Repeat("c", 100)), 150)
	assert.True(t, h.Truncated)
	assert.Equal(t, 2, h.Included, "second block is cut to fit")
	assert.Equal(t, 3, h.Total)
	assert.True(t, strings.HasSuffix(h.Text, "[history truncated: included 2 of 3 records]"))

	body := strings.TrimSuffix(h.Text, "\n\n[history truncated: included 2 of 3 records]")
	assert.Len(t, body, 150)
	assert.True(t, strings.HasPrefix(body, "Title: R1\nExtracted Data: aaaa"))
}

func TestBuildHistoryFirstBlockTooLarge(t *testing.T) {
	h := BuildHistory(recs(strings.Repeat("z", 1000)), 64)
	assert.True(t, h.Truncated)
	assert.Equal(t, 1, h.Included)
	assert.Contains(t, h.Text, "included 1 of 1 records")
}

func TestBuildHistoryNoRoomForNextBlock(t *testing.T) {
	first := "Title: R1\nExtracted Data: one"
	h := BuildHistory(recs("one", "two"), len(first)+3)
	assert.True(t, h.Truncated)
	assert.Equal(t, 1, h.Included)
	assert.True(t, strings.HasPrefix(h.Text, first+"\n\n[history truncated"))
}

func TestCutUTF8KeepsRunesWhole(t *testing.T) {
	s := "héllo wörld"
	for n := 0; n <= len(s); n++ {
		got := cutUTF8(s, n)
		assert.LessOrEqual(t, len(got), n)
		assert.True(t, utf8.ValidString(got), "cut at %d", n)
	}
	assert.Equal(t, s, cutUTF8(s, 100))
}
