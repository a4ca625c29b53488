package model

import "strings"

// Tags are serialized as a "#tag1 #tag2" suffix embedded in the bookmark
// title, because the bridge's update operation only carries a title field.
// The transform here must round-trip: ParseTags(TitleWithTags(t, tags))
// on the suffix yields tags again, which is why SanitizeTag strips literal
// '#' characters before a value is ever accepted as a tag.

// ParseTags splits a serialized tag string on '#', trimming whitespace
// from each piece and dropping empty pieces. Order is preserved.
func ParseTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, piece := range strings.Split(s, "#") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			tags = append(tags, piece)
		}
	}
	return tags
}

// ComposeTags serializes tags as "#tag1 #tag2". Empty and all-'#' values
// are skipped. Zero tags compose to the empty string.
func ComposeTags(tags []string) string {
	var b strings.Builder
	for _, tag := range tags {
		tag = SanitizeTag(tag)
		if tag == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('#')
		b.WriteString(tag)
	}
	return b.String()
}

// SanitizeTag strips literal '#' characters and surrounding whitespace
// from a tag value. A '#' inside a tag would be read as a delimiter on
// the next parse, breaking round-tripping.
func SanitizeTag(tag string) string {
	return strings.TrimSpace(strings.ReplaceAll(tag, "#", ""))
}

// SanitizeTags sanitizes every value, dropping those that end up empty.
func SanitizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if t := SanitizeTag(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTitle separates a raw stored title into the clean display title
// and the parsed tag list. Everything from the first '#' on is treated
// as the tag suffix.
func SplitTitle(raw string) (title string, tags []string) {
	idx := strings.Index(raw, "#")
	if idx < 0 {
		return strings.TrimSpace(raw), nil
	}
	return strings.TrimSpace(raw[:idx]), ParseTags(raw[idx:])
}

// TitleWithTags serializes a clean title and tag list back into the flat
// stored form. With zero tags the result is exactly the trimmed title,
// no trailing separator.
func TitleWithTags(title string, tags []string) string {
	title = strings.TrimSpace(title)
	suffix := ComposeTags(tags)
	if suffix == "" {
		return title
	}
	if title == "" {
		return suffix
	}
	return title + " " + suffix
}
