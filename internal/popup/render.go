package popup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	tagChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("58")).
			Padding(0, 1)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)
)

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == modeEdit {
		b.WriteString(m.renderEditor())
	} else {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	header := fmt.Sprintf("tagmark  [%d bookmarks]", len(m.results))
	if m.app.Degraded() {
		header += "  " + degradedStyle.Render("offline")
	}
	return headerStyle.Render(header)
}

func (m Model) renderList() string {
	if len(m.results) == 0 {
		return suggestionStyle.Render("  no matches")
	}

	// Each result takes two lines; scroll a window around the selection.
	visible := (m.height - 6) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := start + visible
	if end > len(m.results) {
		end = len(m.results)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		r := m.results[i]
		marker := "  "
		line := highlightTitle(r.Bookmark.Title, r.MatchedIndexes)
		if suffix := r.Bookmark.Tags; len(suffix) > 0 {
			parts := make([]string, len(suffix))
			for j, tag := range suffix {
				parts[j] = "#" + tag
			}
			line += " " + tagStyle.Render(strings.Join(parts, " "))
		}
		if i == m.selected {
			marker = selectedStyle.Render("> ")
		}
		b.WriteString(marker + line + "\n")
		b.WriteString("    " + urlStyle.Render(truncate(r.Bookmark.URL, m.width-6)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// highlightTitle emphasizes the bytes the fuzzy matcher hit. idxs are
// byte offsets into title, ascending.
func highlightTitle(title string, idxs []int) string {
	if len(idxs) == 0 {
		return titleStyle.Render(title)
	}

	matched := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		s := string(r)
		if matched[i] {
			b.WriteString(matchStyle.Render(s))
		} else {
			b.WriteString(titleStyle.Render(s))
		}
	}
	return b.String()
}

func (m Model) renderEditor() string {
	titleLabel := labelStyle.Render("Title")
	tagsLabel := labelStyle.Render("Tags")
	if m.tagWidget.Focused() {
		tagsLabel = focusedLabelStyle.Render("Tags")
	} else {
		titleLabel = focusedLabelStyle.Render("Title")
	}

	var b strings.Builder
	b.WriteString(titleLabel + "\n")
	b.WriteString("  " + m.titleInput.View() + "\n\n")
	b.WriteString(tagsLabel + "\n")
	b.WriteString("  " + m.tagWidget.View() + "\n")
	return b.String()
}

func (m Model) renderStatusBar() string {
	help := "enter=edit  ctrl+o=open  ctrl+r=refresh  esc=quit"
	if m.mode == modeEdit {
		help = "ctrl+s=save  esc=cancel  tab=next field/complete  backspace=remove tag"
	}
	text := help
	if m.status != "" {
		text = m.status + "  |  " + help
	}
	return statusBarStyle.Width(max(m.width-2, 0)).Render(text)
}

// truncate shortens s to maxLen runes, never splitting a multi-byte
// character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 3 || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
