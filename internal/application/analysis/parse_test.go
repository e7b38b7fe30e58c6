package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string     `json:"name"`
	Tags  StringList `json:"tags"`
	Count int        `json:"count"`
}

func TestParseJSONDirectMatchesStandardDecoding(t *testing.T) {
	inputs := []string{
		`{"name":"a","tags":["x","y"],"count":2}`,
		`  {"name":"with } brace","tags":[],"count":0}  `,
		`{"name":"nested","tags":["{not json}"],"count":1,"extra":{"k":"v"}}`,
		`{}`,
	}
	for _, in := range inputs {
		var want sample
		require.NoError(t, json.Unmarshal([]byte(in), &want))

		got, tier := ParseJSON[sample](in)
		assert.Equal(t, TierDirect, tier, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseJSONEmbedded(t *testing.T) {
	cases := map[string]string{
		"prose":        `Here you go: {"name":"a","tags":"solo","count":3} hope it helps`,
		"code fence":   "```json\n{\"name\":\"a\",\"tags\":\"solo\",\"count\":3}\n```",
		"brace in str": `Note {"name":"a","tags":"solo","count":3,"x":"}{"} end`,
		"skips broken": `{broken} then {"name":"a","tags":["solo"],"count":3}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, tier := ParseJSON[sample](in)
			assert.Equal(t, TierEmbedded, tier)
			assert.Equal(t, "a", got.Name)
			assert.Equal(t, StringList{"solo"}, got.Tags)
			assert.Equal(t, 3, got.Count)
		})
	}
}

func TestParseJSONRaw(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"name": "unterminated`, `[1,2,3]`, `{"count":"NaN"}`} {
		got, tier := ParseJSON[sample](in)
		assert.Equal(t, TierRaw, tier, in)
		assert.Zero(t, got)
	}
}

func TestFirstObject(t *testing.T) {
	obj, ok := FirstObject(`pre {"a":{"b":"}"}} post {"c":1}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":"}"}}`, obj)

	obj, ok = FirstObject(`{"a":"\"}"} tail`)
	require.True(t, ok)
	assert.Equal(t, `{"a":"\"}"}`, obj)

	_, ok = FirstObject(`{ never closed`)
	assert.False(t, ok)
}

func TestStringList(t *testing.T) {
	cases := []struct {
		in   string
		want StringList
	}{
		{`null`, nil},
		{`"single"`, StringList{"single"}},
		{`"  "`, StringList{}},
		{`["a"," b ",""]`, StringList{"a", "b"}},
		{`[1, {"k": "v"}, "c"]`, StringList{"1", `{"k":"v"}`, "c"}},
		{`[]`, StringList{}},
	}
	for _, c := range cases {
		var l StringList
		require.NoError(t, json.Unmarshal([]byte(c.in), &l), c.in)
		assert.Equal(t, c.want, l, c.in)
	}

	var l StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &l))
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "direct", TierDirect.String())
	assert.Equal(t, "embedded", TierEmbedded.String())
	assert.Equal(t, "raw", TierRaw.String())
	assert.Equal(t, "unknown", Tier(0).String())
}
