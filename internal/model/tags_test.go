package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTags(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"empty":              {"", nil},
		"single":             {"#work", []string{"work"}},
		"multiple":           {"#work #urgent", []string{"work", "urgent"}},
		"order preserved":    {"#zebra #apple", []string{"zebra", "apple"}},
		"extra whitespace":   {"  #work   #urgent  ", []string{"work", "urgent"}},
		"empty pieces":       {"## #work ##", []string{"work"}},
		"no hash prefix":     {"plain", []string{"plain"}},
		"hash only":          {"#", nil},
		"adjacent delimiter": {"#a#b", []string{"a", "b"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseTags(tc.in))
		})
	}
}

func TestComposeTags(t *testing.T) {
	assert.Equal(t, "", ComposeTags(nil))
	assert.Equal(t, "#work", ComposeTags([]string{"work"}))
	assert.Equal(t, "#work #urgent", ComposeTags([]string{"work", "urgent"}))
	assert.Equal(t, "#ab", ComposeTags([]string{"a#b"}))
	assert.Equal(t, "#a #b", ComposeTags([]string{"a", "", "#", "b"}))
}

func TestRoundTrip(t *testing.T) {
	// parse(compose(tags)) == tags for tags without '#'.
	tags := []string{"work", "urgent", "go", "read-later"}
	assert.Equal(t, tags, ParseTags(ComposeTags(tags)))
}

func TestRoundTripIdempotence(t *testing.T) {
	// parse(compose(parse(s))) == parse(s), including inputs with stray '#'.
	for _, s := range []string{
		"#work #urgent",
		"## #a##b #c",
		"  #one  ",
		"",
	} {
		once := ParseTags(s)
		assert.Equal(t, once, ParseTags(ComposeTags(once)), "input %q", s)
	}
}

func TestSanitizeTag(t *testing.T) {
	assert.Equal(t, "cbugs", SanitizeTag("c#bugs"))
	assert.Equal(t, "work", SanitizeTag("  #work "))
	assert.Equal(t, "", SanitizeTag("##"))

	// Composing then parsing a tag containing '#' yields the tag with '#' removed.
	got := ParseTags(ComposeTags([]string{"c#bugs"}))
	assert.Equal(t, []string{"cbugs"}, got)
}

func TestSplitTitle(t *testing.T) {
	title, tags := SplitTitle("Example #work #urgent")
	assert.Equal(t, "Example", title)
	assert.Equal(t, []string{"work", "urgent"}, tags)

	title, tags = SplitTitle("No tags here")
	assert.Equal(t, "No tags here", title)
	assert.Nil(t, tags)

	title, tags = SplitTitle("#orphan")
	assert.Equal(t, "", title)
	assert.Equal(t, []string{"orphan"}, tags)
}

func TestTitleWithTags(t *testing.T) {
	assert.Equal(t, "Example #work #urgent", TitleWithTags("Example", []string{"work", "urgent"}))

	// Zero tags: exactly the trimmed title, no trailing suffix.
	assert.Equal(t, "Example", TitleWithTags("Example ", nil))
	assert.Equal(t, "#work", TitleWithTags("", []string{"work"}))
}
