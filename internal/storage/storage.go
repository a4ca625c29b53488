package storage

import (
	"context"
	"time"

	"tagmark/internal/model"
)

// Store is the local SQLite mirror of the browser's bookmark store. It
// exists so the popup can open and search while the bridge is down, and
// it queues title updates made in that state.
type Store interface {
	// ReplaceAll swaps the cached bookmark set for the given one.
	ReplaceAll(ctx context.Context, bookmarks []*model.Bookmark) error

	// All returns every cached bookmark.
	All(ctx context.Context) ([]*model.Bookmark, error)

	// Get retrieves a cached bookmark by its platform id.
	Get(ctx context.Context, id string) (*model.Bookmark, error)

	// Upsert writes a single bookmark into the cache.
	Upsert(ctx context.Context, b *model.Bookmark) error

	// EnqueueUpdate records a title update that could not reach the
	// bridge. A later enqueue for the same bookmark supersedes earlier
	// ones.
	EnqueueUpdate(ctx context.Context, bookmarkID, rawTitle string) (*PendingUpdate, error)

	// PendingUpdates returns queued updates, oldest first.
	PendingUpdates(ctx context.Context) ([]*PendingUpdate, error)

	// DeletePending removes a queued update by its queue id.
	DeletePending(ctx context.Context, id string) error

	// Close closes the underlying database.
	Close() error
}

// PendingUpdate is one queued bookmark title update.
type PendingUpdate struct {
	ID         string
	BookmarkID string
	RawTitle   string
	CreatedAt  time.Time
}
