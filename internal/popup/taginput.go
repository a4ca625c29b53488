package popup

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tagmark/internal/model"
)

// TagInput is the tag editing widget: an ordered set of committed tags
// in front of a text input, with completion against a whitelist of known
// tags. The popup owns a single instance and calls Reset between edit
// sessions instead of constructing a new one.
type TagInput struct {
	input      textinput.Model
	tags       []string
	whitelist  []string
	suggestion string
}

// NewTagInput constructs the widget. Call Reset before first use.
func NewTagInput() *TagInput {
	ti := textinput.New()
	ti.Placeholder = "add tag"
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Width = 24
	return &TagInput{input: ti}
}

// Reset clears all tags, replaces the whitelist and empties the input,
// preparing the widget for the next edit session.
func (t *TagInput) Reset(whitelist []string) {
	t.RemoveAllTags()
	t.whitelist = whitelist
	t.input.SetValue("")
	t.suggestion = ""
}

// RemoveAllTags clears the committed tag list.
func (t *TagInput) RemoveAllTags() {
	t.tags = nil
}

// AddTags commits the given values in order. Each value is sanitized
// (literal '#' stripped, whitespace trimmed); values that end up empty
// or duplicate an already committed tag are skipped.
func (t *TagInput) AddTags(list []string) {
	for _, raw := range list {
		tag := model.SanitizeTag(raw)
		if tag == "" || t.has(tag) {
			continue
		}
		t.tags = append(t.tags, tag)
	}
}

// Value returns the committed tags in insertion order.
func (t *TagInput) Value() []string {
	return append([]string(nil), t.tags...)
}

// SetWhitelist replaces the suggestion list.
func (t *TagInput) SetWhitelist(list []string) {
	t.whitelist = list
	t.refreshSuggestion()
}

// Pending returns the uncommitted text currently in the input.
func (t *TagInput) Pending() string {
	return t.input.Value()
}

// Focus gives the widget keyboard focus.
func (t *TagInput) Focus() tea.Cmd {
	return t.input.Focus()
}

// Blur removes keyboard focus.
func (t *TagInput) Blur() {
	t.input.Blur()
}

// Focused reports whether the widget has keyboard focus.
func (t *TagInput) Focused() bool {
	return t.input.Focused()
}

// CommitPending turns whatever is typed into a committed tag. Called by
// the widget on enter/space/comma and by the popup before saving, so a
// half-typed tag is never silently lost.
func (t *TagInput) CommitPending() {
	if v := t.input.Value(); v != "" {
		t.AddTags([]string{v})
		t.input.SetValue("")
	}
	t.suggestion = ""
}

// Update handles key input while the widget is focused.
func (t *TagInput) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return cmd
	}

	switch keyMsg.String() {
	case "enter", " ", ",":
		t.CommitPending()
		return nil

	case "tab":
		if t.suggestion != "" {
			t.AddTags([]string{t.suggestion})
			t.input.SetValue("")
			t.suggestion = ""
		} else {
			t.CommitPending()
		}
		return nil

	case "backspace":
		if t.input.Value() == "" {
			if n := len(t.tags); n > 0 {
				t.tags = t.tags[:n-1]
			}
			return nil
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)

	// Typed '#' never survives into a tag value; scrub it as it appears
	// so the displayed pending text matches what would be committed.
	if v := t.input.Value(); strings.Contains(v, "#") {
		t.input.SetValue(strings.ReplaceAll(v, "#", ""))
	}

	t.refreshSuggestion()
	return cmd
}

// Suggestion returns the current whitelist completion for the pending
// text, or "" when there is none.
func (t *TagInput) Suggestion() string {
	return t.suggestion
}

func (t *TagInput) refreshSuggestion() {
	t.suggestion = ""
	pending := t.input.Value()
	if pending == "" {
		return
	}
	for _, candidate := range t.whitelist {
		if candidate != pending && strings.HasPrefix(candidate, pending) && !t.has(candidate) {
			t.suggestion = candidate
			return
		}
	}
}

func (t *TagInput) has(tag string) bool {
	for _, existing := range t.tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// View renders committed tags as "#tag" chips followed by the input and
// the ghost remainder of the current suggestion.
func (t *TagInput) View() string {
	var b strings.Builder
	for _, tag := range t.tags {
		b.WriteString(tagChipStyle.Render("#" + tag))
		b.WriteByte(' ')
	}
	b.WriteString(t.input.View())
	if t.suggestion != "" {
		if rest, ok := strings.CutPrefix(t.suggestion, t.input.Value()); ok && rest != "" {
			b.WriteString(suggestionStyle.Render(rest))
		}
	}
	return b.String()
}
