// Package app owns the application context: the bridge client, the local
// cache, the in-memory index and the logger, wired together behind the
// operations the popup and the CLI call. Views receive this context
// explicitly; there is no package-level shared state.
package app

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"tagmark/internal/browser"
	"tagmark/internal/config"
	"tagmark/internal/index"
	"tagmark/internal/model"
	"tagmark/internal/storage"
)

// App is the application context.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	service browser.Service
	store   storage.Store
	index   *index.Index

	// degraded is set when the last refresh or save could not reach the
	// bridge. Reads and edits keep working against the local state.
	degraded atomic.Bool
}

// New assembles an App from its parts. Setup builds the real ones from
// config; tests inject fakes here.
func New(cfg *config.Config, logger *zap.Logger, service browser.Service, store storage.Store) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		service: service,
		store:   store,
		index:   index.New(),
	}
}

// Setup builds an App with the HTTP bridge client and the SQLite cache
// from config.
func Setup(cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	client := browser.NewClient(cfg.Bridge.URL, cfg.Bridge.Token, browser.WithLogger(logger))
	return New(cfg, logger, client, store), nil
}

// Close releases the local cache.
func (a *App) Close() error {
	return a.store.Close()
}

// Degraded reports whether the app is operating without the bridge.
func (a *App) Degraded() bool {
	return a.degraded.Load()
}

// Refresh rebuilds the index from the bridge and mirrors the result into
// the cache. When the bridge is unavailable the cache serves instead and
// the app enters degraded mode; that is logged, not returned.
func (a *App) Refresh(ctx context.Context) error {
	bookmarks, err := a.service.List(ctx)
	switch {
	case err == nil:
		a.degraded.Store(false)
		if cacheErr := a.store.ReplaceAll(ctx, bookmarks); cacheErr != nil {
			a.logger.Warn("failed to mirror bookmarks into cache", zap.Error(cacheErr))
		}

	case errors.Is(err, model.ErrUnavailable):
		a.degraded.Store(true)
		a.logger.Warn("bookmarks bridge unavailable, serving cached bookmarks", zap.Error(err))
		bookmarks, err = a.store.All(ctx)
		if err != nil {
			return err
		}

	default:
		return err
	}

	a.index.Rebuild(bookmarks)
	return nil
}

// Search returns ranked matches for query, capped at the configured
// result limit. An empty query lists everything in recency order.
func (a *App) Search(query string) []index.Result {
	return a.index.Search(query, a.cfg.Popup.ResultLimit)
}

// Whitelist returns the tag suggestion list derived from all bookmarks.
func (a *App) Whitelist() []string {
	return a.index.Tags()
}

// TagCounts returns per-tag bookmark counts.
func (a *App) TagCounts() map[string]int {
	return a.index.TagCounts()
}

// Bookmarks returns every indexed bookmark in recency order.
func (a *App) Bookmarks() []*model.Bookmark {
	return a.index.All()
}

// Edit returns a copy of the bookmark to populate an editor with. For an
// id not present in the index it logs one warning and returns nil; the
// caller treats that as a no-op.
func (a *App) Edit(id string) *model.Bookmark {
	b := a.index.Get(id)
	if b == nil {
		a.logger.Warn("edit requested for unknown bookmark", zap.String("id", id))
		return nil
	}
	return b.Clone()
}

// Lookup fetches a single bookmark fresh from the bridge, falling back
// to the cache when the bridge is unavailable. An unknown id logs one
// warning and returns nil, mirroring Edit.
func (a *App) Lookup(ctx context.Context, id string) *model.Bookmark {
	b, err := a.service.Get(ctx, id)
	switch {
	case err == nil:
		a.degraded.Store(false)
		return b

	case errors.Is(err, model.ErrNotFound):
		a.logger.Warn("lookup requested for unknown bookmark", zap.String("id", id))
		return nil

	case errors.Is(err, model.ErrUnavailable):
		a.degraded.Store(true)
		a.logger.Warn("bookmarks bridge unavailable, serving cached bookmark",
			zap.String("id", id))
		cached, cacheErr := a.store.Get(ctx, id)
		if cacheErr != nil {
			if errors.Is(cacheErr, model.ErrNotFound) {
				a.logger.Warn("lookup requested for unknown bookmark", zap.String("id", id))
			} else {
				a.logger.Warn("cache lookup failed", zap.Error(cacheErr))
			}
			return nil
		}
		return cached

	default:
		a.logger.Warn("bookmark lookup failed", zap.String("id", id), zap.Error(err))
		return nil
	}
}

// Save writes the edited title and tags back through the bridge as a
// single serialized title string. The bool reports whether anything was
// saved: false means the bookmark was not found and the model is
// untouched.
//
// Failure handling follows two recognized kinds: an id missing from the
// index is logged and the model is left untouched; an unavailable bridge
// updates the local state, queues the change for a later sync and logs.
// Neither surfaces an error to the caller. Anything else is returned.
func (a *App) Save(ctx context.Context, id, title string, tags []string) (bool, error) {
	current := a.index.Get(id)
	if current == nil {
		a.logger.Warn("save requested for unknown bookmark", zap.String("id", id))
		return false, nil
	}

	updated := current.Clone()
	updated.Title = title
	updated.Tags = model.SanitizeTags(tags)
	rawTitle := updated.RawTitle()

	err := a.service.Update(ctx, id, rawTitle)
	switch {
	case err == nil:
		a.degraded.Store(false)
		if cacheErr := a.store.Upsert(ctx, updated); cacheErr != nil {
			a.logger.Warn("failed to update cache after save", zap.Error(cacheErr))
		}
		// The platform is the source of truth after a save: discard the
		// in-memory copy and rebuild by re-querying.
		if refreshErr := a.Refresh(ctx); refreshErr != nil {
			a.index.Replace(updated)
		}
		return true, nil

	case errors.Is(err, model.ErrNotFound):
		a.logger.Warn("bookmark no longer exists on platform", zap.String("id", id))
		return false, nil

	case errors.Is(err, model.ErrUnavailable):
		a.degraded.Store(true)
		a.logger.Warn("bookmarks bridge unavailable, change saved locally only",
			zap.String("id", id))
		a.index.Replace(updated)
		if cacheErr := a.store.Upsert(ctx, updated); cacheErr != nil {
			a.logger.Warn("failed to update cache", zap.Error(cacheErr))
		}
		if _, queueErr := a.store.EnqueueUpdate(ctx, id, rawTitle); queueErr != nil {
			a.logger.Warn("failed to queue pending update", zap.Error(queueErr))
		}
		return true, nil

	default:
		return false, err
	}
}

// FlushPending replays updates queued while the bridge was down. It
// returns how many were applied. Updates for bookmarks deleted on the
// platform side are dropped.
func (a *App) FlushPending(ctx context.Context) (int, error) {
	pending, err := a.store.PendingUpdates(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, p := range pending {
		err := a.service.Update(ctx, p.BookmarkID, p.RawTitle)
		switch {
		case err == nil:
			applied++
		case errors.Is(err, model.ErrNotFound):
			a.logger.Warn("dropping pending update for deleted bookmark",
				zap.String("id", p.BookmarkID))
		default:
			return applied, err
		}
		if delErr := a.store.DeletePending(ctx, p.ID); delErr != nil {
			a.logger.Warn("failed to remove pending update", zap.Error(delErr))
		}
	}
	return applied, nil
}

// PendingCount returns how many updates are waiting for the bridge.
func (a *App) PendingCount(ctx context.Context) int {
	pending, err := a.store.PendingUpdates(ctx)
	if err != nil {
		return 0
	}
	return len(pending)
}
