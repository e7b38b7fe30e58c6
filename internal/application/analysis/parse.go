package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Tier reports which rung of the recovery ladder produced a value.
type Tier int

const (
	TierDirect   Tier = iota + 1 // whole reply is a JSON object
	TierEmbedded                 // first balanced {...} inside prose or fences
	TierRaw                      // nothing parseable; caller keeps the raw text
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierEmbedded:
		return "embedded"
	case TierRaw:
		return "raw"
	}
	return "unknown"
}

// ParseJSON decodes a model reply into T. A reply that is a JSON object is
// decoded as is; otherwise each balanced {...} substring is tried in order.
// On TierRaw the returned value is the zero T.
func ParseJSON[T any](raw string) (T, Tier) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var v T
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v, TierDirect
		}
	}
	for start := 0; start < len(raw); {
		obj, end, ok := nextObject(raw, start)
		if !ok {
			break
		}
		var v T
		if err := json.Unmarshal([]byte(obj), &v); err == nil {
			return v, TierEmbedded
		}
		start = end
	}
	var zero T
	return zero, TierRaw
}

// FirstObject returns the first balanced {...} substring of s.
func FirstObject(s string) (string, bool) {
	obj, _, ok := nextObject(s, 0)
	return obj, ok
}

// nextObject finds the first balanced object opening at or after from.
// Braces inside JSON strings are ignored. end is the index to resume from.
func nextObject(s string, from int) (obj string, end int, ok bool) {
	for i := from; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if j, closed := matchBrace(s, i); closed {
			return s[i : j+1], j + 1, true
		}
		// unbalanced from here; a later '{' may still close
	}
	return "", len(s), false
}

func matchBrace(s string, open int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// StringList accepts a JSON array or a single string. Non-string array items
// are kept as compact JSON text.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s != "" {
			*l = StringList{s}
		} else {
			*l = StringList{}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make(StringList, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, it); err != nil {
			return err
		}
		out = append(out, buf.String())
	}
	*l = out
	return nil
}

// orEmpty never returns nil.
func orEmpty(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}
