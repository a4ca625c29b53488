package popup

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tagmark/internal/app"
	"tagmark/internal/config"
	"tagmark/internal/model"
	"tagmark/internal/storage"
)

// fakeBridge is an in-memory stand-in for the bookmarks bridge.
type fakeBridge struct {
	bookmarks map[string]*model.Bookmark
}

func (f *fakeBridge) List(ctx context.Context) ([]*model.Bookmark, error) {
	var out []*model.Bookmark
	for _, b := range f.bookmarks {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (f *fakeBridge) Get(ctx context.Context, id string) (*model.Bookmark, error) {
	b, ok := f.bookmarks[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return b.Clone(), nil
}

func (f *fakeBridge) Update(ctx context.Context, id, rawTitle string) error {
	b, ok := f.bookmarks[id]
	if !ok {
		return model.ErrNotFound
	}
	b.Title, b.Tags = model.SplitTitle(rawTitle)
	return nil
}

func testModel(t *testing.T, bridge *fakeBridge) Model {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{Popup: config.PopupConfig{ResultLimit: 50}}
	return initialModel(app.New(cfg, zap.NewNop(), bridge, store))
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func popupBookmark() *model.Bookmark {
	return &model.Bookmark{
		ID:        "abc",
		URL:       "https://example.com",
		Title:     "Example",
		Tags:      []string{"work"},
		DateAdded: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSaveReportsMissingBookmark(t *testing.T) {
	bridge := &fakeBridge{bookmarks: map[string]*model.Bookmark{"abc": popupBookmark()}}
	m := testModel(t, bridge)

	m, _ = step(t, m, refreshCmd(m.app)())
	require.Len(t, m.results, 1)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modeEdit, m.mode)

	// The bookmark disappears while the editor is open.
	delete(bridge.bookmarks, "abc")
	m, _ = step(t, m, refreshCmd(m.app)())

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.Equal(t, "bookmark not found, nothing saved", m.status)
}

func TestSaveReportsSaved(t *testing.T) {
	bridge := &fakeBridge{bookmarks: map[string]*model.Bookmark{"abc": popupBookmark()}}
	m := testModel(t, bridge)

	m, _ = step(t, m, refreshCmd(m.app)())
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, _ = step(t, m, cmd())

	assert.Equal(t, "saved", m.status)
}

func TestRefreshUpdatesEditorWhitelist(t *testing.T) {
	b := popupBookmark()
	bridge := &fakeBridge{bookmarks: map[string]*model.Bookmark{"abc": b}}
	m := testModel(t, bridge)

	m, _ = step(t, m, refreshCmd(m.app)())
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m, _ = step(t, m, keyRunes("go"))
	assert.Empty(t, m.tagWidget.Suggestion())

	// A new tag appears on the platform; a refresh while the editor is
	// open picks it up for completion.
	b.Tags = append(b.Tags, "golang")
	m, _ = step(t, m, refreshCmd(m.app)())

	assert.Equal(t, "golang", m.tagWidget.Suggestion())
}
