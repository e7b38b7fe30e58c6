package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/medibridge/carepipe/internal/domain/records"
)

const historySeparator = "\n\n---\n\n"

// History is the document sent to the model for a health summary.
type History struct {
	Text      string
	Included  int
	Total     int
	Truncated bool
}

// BuildHistory joins "Title / Extracted Data" blocks in the given order until
// limit bytes are used (limit <= 0 means unbounded). A block that does not fit
// is cut, and a marker naming how many records made it in is appended.
func BuildHistory(recs []*records.Record, limit int) History {
	h := History{Total: len(recs)}
	var b strings.Builder
	for _, r := range recs {
		block := fmt.Sprintf("Title: %s\nExtracted Data: %s", r.Title, r.ExtractedText)
		sep := ""
		if h.Included > 0 {
			sep = historySeparator
		}
		if limit > 0 && b.Len()+len(sep)+len(block) > limit {
			room := limit - b.Len() - len(sep)
			if room > 0 {
				b.WriteString(sep)
				b.WriteString(cutUTF8(block, room))
				h.Included++
			}
			h.Truncated = true
			break
		}
		b.WriteString(sep)
		b.WriteString(block)
		h.Included++
	}
	if h.Truncated {
		fmt.Fprintf(&b, "\n\n[history truncated: included %d of %d records]", h.Included, h.Total)
	}
	h.Text = b.String()
	return h
}

// cutUTF8 returns at most n bytes of s without splitting a rune.
func cutUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
