// Package popup is the interactive terminal popup: search-as-you-type
// over the bookmark index with an inline editor for a bookmark's title
// and tags.
package popup

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tagmark/internal/app"
	"tagmark/internal/index"
)

type mode int

const (
	modeSearch mode = iota
	modeEdit
)

type editFocus int

const (
	focusTitle editFocus = iota
	focusTags
)

// Model is the bubbletea model for the popup. All state the views need
// hangs off this struct; nothing is package-global.
type Model struct {
	app *app.App

	searchInput textinput.Model
	results     []index.Result
	selected    int

	mode       mode
	editingID  string
	titleInput textinput.Model
	tagWidget  *TagInput
	focus      editFocus

	width  int
	height int

	status string
	err    error
}

type refreshDoneMsg struct{ err error }

type saveDoneMsg struct {
	saved bool
	err   error
}

type statusMsg struct{ message string }

func initialModel(a *app.App) Model {
	search := textinput.New()
	search.Placeholder = "search bookmarks"
	search.Prompt = "/ "
	search.Focus()

	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 250
	title.Width = 60

	return Model{
		app:         a,
		searchInput: search,
		titleInput:  title,
		tagWidget:   NewTagInput(),
		width:       80,
		height:      24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.app), textinput.Blink, tea.EnterAltScreen)
}

func refreshCmd(a *app.App) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: a.Refresh(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.applySearch()
		// A mid-session refresh can change the tag set; keep the open
		// editor's suggestions in step with it.
		m.tagWidget.SetWhitelist(m.app.Whitelist())
		if m.app.Degraded() {
			m.status = "bridge offline, showing cached bookmarks"
		}
		return m, nil

	case saveDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.saved {
			m.status = "saved"
		} else {
			m.status = "bookmark not found, nothing saved"
		}
		m.applySearch()
		return m, nil

	case statusMsg:
		m.status = msg.message
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateSearch(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "down", "ctrl+n":
		if m.selected < len(m.results)-1 {
			m.selected++
		}
		return m, nil

	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "enter":
		m.openEditor()
		return m, textinput.Blink

	case "ctrl+o":
		return m, m.openSelected()

	case "ctrl+r":
		return m, refreshCmd(m.app)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applySearch()
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.closeEditor()
		return m, nil

	case "ctrl+s":
		return m.save()

	case "enter":
		if m.focus == focusTitle {
			m.setEditFocus(focusTags)
			return m, nil
		}

	case "up":
		if m.focus == focusTags && m.tagWidget.Pending() == "" {
			m.setEditFocus(focusTitle)
			return m, nil
		}

	case "down", "tab":
		if m.focus == focusTitle {
			m.setEditFocus(focusTags)
			return m, nil
		}
	}

	if m.focus == focusTitle {
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}
	return m, m.tagWidget.Update(msg)
}

// applySearch recomputes the result list for the current query.
func (m *Model) applySearch() {
	m.results = m.app.Search(m.searchInput.Value())
	if m.selected >= len(m.results) {
		m.selected = len(m.results) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// openEditor populates the editor for the selected bookmark. The tag
// widget is the same instance every session; only its state is reset.
func (m *Model) openEditor() {
	if len(m.results) == 0 || m.selected >= len(m.results) {
		return
	}

	b := m.app.Edit(m.results[m.selected].Bookmark.ID)
	if b == nil {
		m.status = "bookmark not found"
		return
	}

	m.mode = modeEdit
	m.editingID = b.ID
	m.titleInput.SetValue(b.Title)
	m.titleInput.CursorEnd()
	m.tagWidget.Reset(m.app.Whitelist())
	m.tagWidget.AddTags(b.Tags)
	m.setEditFocus(focusTitle)
	m.searchInput.Blur()
	m.status = ""
}

func (m *Model) closeEditor() {
	m.mode = modeSearch
	m.editingID = ""
	m.titleInput.Blur()
	m.tagWidget.Blur()
	m.searchInput.Focus()
}

func (m *Model) setEditFocus(f editFocus) {
	m.focus = f
	if f == focusTitle {
		m.tagWidget.Blur()
		m.titleInput.Focus()
	} else {
		m.titleInput.Blur()
		m.tagWidget.Focus()
	}
}

func (m Model) save() (tea.Model, tea.Cmd) {
	m.tagWidget.CommitPending()

	id := m.editingID
	title := m.titleInput.Value()
	tags := m.tagWidget.Value()
	m.closeEditor()

	a := m.app
	return m, func() tea.Msg {
		saved, err := a.Save(context.Background(), id, title, tags)
		return saveDoneMsg{saved: saved, err: err}
	}
}

func (m *Model) openSelected() tea.Cmd {
	if len(m.results) == 0 || m.selected >= len(m.results) {
		return nil
	}

	url := m.results[m.selected].Bookmark.URL
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return func() tea.Msg {
			return statusMsg{"Unsupported OS"}
		}
	}

	go cmd.Run()

	return func() tea.Msg {
		return statusMsg{fmt.Sprintf("Opened: %s", url)}
	}
}

// Run starts the popup and blocks until it exits.
func Run(a *app.App) error {
	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
