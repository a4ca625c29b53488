package model

import (
	"net/url"
	"time"
)

// Bookmark represents a single entry in the browser's bookmark store.
// ID is the platform-assigned identifier and is treated as opaque; Title
// is the clean display title with the tag suffix already split off into
// Tags (ordered as they appeared in the serialized form).
type Bookmark struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags,omitempty"`
	DateAdded time.Time `json:"date_added"`
}

// FromRawTitle builds a Bookmark from the bridge's raw title string,
// splitting the embedded tag suffix into the Tags field.
func FromRawTitle(id, rawURL, rawTitle string, dateAdded time.Time) *Bookmark {
	title, tags := SplitTitle(rawTitle)
	return &Bookmark{
		ID:        id,
		URL:       rawURL,
		Title:     title,
		Tags:      tags,
		DateAdded: dateAdded,
	}
}

// RawTitle returns the serialized title as stored by the platform, with
// the tag suffix re-embedded.
func (b *Bookmark) RawTitle() string {
	return TitleWithTags(b.Title, b.Tags)
}

// HasTag reports whether the bookmark carries the given tag.
// Tag identity is case-sensitive.
func (b *Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks that the bookmark has an ID and a well-formed URL.
func (b *Bookmark) Validate() error {
	if b.ID == "" {
		return ErrMissingID
	}
	if b.URL == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme == "" || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// Clone returns a deep copy. The popup edits a copy so a cancelled edit
// never touches the index's entry.
func (b *Bookmark) Clone() *Bookmark {
	c := *b
	c.Tags = append([]string(nil), b.Tags...)
	return &c
}
