package storage

import (
	"context"
	"testing"
	"time"

	"tagmark/internal/model"
)

func setupTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBookmarks() []*model.Bookmark {
	return []*model.Bookmark{
		{
			ID:        "b1",
			URL:       "https://example.com",
			Title:     "Example",
			Tags:      []string{"work", "urgent"},
			DateAdded: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "b2",
			URL:       "https://go.dev",
			Title:     "Go",
			DateAdded: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestReplaceAllAndAll(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, sampleBookmarks()); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 bookmarks, got %d", len(all))
	}
	if all[0].ID != "b1" {
		t.Errorf("Expected most recent first, got %s", all[0].ID)
	}
	if len(all[0].Tags) != 2 || all[0].Tags[0] != "work" || all[0].Tags[1] != "urgent" {
		t.Errorf("Tags did not round-trip through the cache: %v", all[0].Tags)
	}

	// A second ReplaceAll drops bookmarks no longer present.
	if err := s.ReplaceAll(ctx, sampleBookmarks()[:1]); err != nil {
		t.Fatalf("second ReplaceAll failed: %v", err)
	}
	all, err = s.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 bookmark after replace, got %d", len(all))
	}
}

func TestGet(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, sampleBookmarks()); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	b, err := s.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if b.Title != "Example" {
		t.Errorf("Expected title 'Example', got %q", b.Title)
	}

	if _, err := s.Get(ctx, "missing"); err != model.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, sampleBookmarks()); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	updated := &model.Bookmark{
		ID:        "b1",
		URL:       "https://example.com",
		Title:     "Example2",
		Tags:      []string{"work"},
		DateAdded: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	b, err := s.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if b.Title != "Example2" {
		t.Errorf("Expected title 'Example2', got %q", b.Title)
	}
	if len(b.Tags) != 1 || b.Tags[0] != "work" {
		t.Errorf("Expected tags [work], got %v", b.Tags)
	}
}

func TestPendingQueue(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	first, err := s.EnqueueUpdate(ctx, "b1", "Example #work")
	if err != nil {
		t.Fatalf("EnqueueUpdate failed: %v", err)
	}
	if first.ID == "" {
		t.Error("Expected non-empty queue id")
	}

	// A later enqueue for the same bookmark supersedes the first.
	second, err := s.EnqueueUpdate(ctx, "b1", "Example #work #urgent")
	if err != nil {
		t.Fatalf("second EnqueueUpdate failed: %v", err)
	}

	if _, err := s.EnqueueUpdate(ctx, "b2", "Go #lang"); err != nil {
		t.Fatalf("third EnqueueUpdate failed: %v", err)
	}

	pending, err := s.PendingUpdates(ctx)
	if err != nil {
		t.Fatalf("PendingUpdates failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending updates, got %d", len(pending))
	}
	for _, p := range pending {
		if p.BookmarkID == "b1" && p.RawTitle != "Example #work #urgent" {
			t.Errorf("Expected superseding title, got %q", p.RawTitle)
		}
	}

	if err := s.DeletePending(ctx, second.ID); err != nil {
		t.Fatalf("DeletePending failed: %v", err)
	}
	pending, err = s.PendingUpdates(ctx)
	if err != nil {
		t.Fatalf("PendingUpdates failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending update after delete, got %d", len(pending))
	}

	if err := s.DeletePending(ctx, "nonexistent"); err != model.ErrNotFound {
		t.Errorf("Expected ErrNotFound for unknown queue id, got %v", err)
	}
}

func TestZeroDateAdded(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	if err := s.ReplaceAll(ctx, []*model.Bookmark{{ID: "b1", URL: "https://example.com"}}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	b, err := s.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !b.DateAdded.IsZero() {
		t.Errorf("Expected zero DateAdded, got %v", b.DateAdded)
	}
}
