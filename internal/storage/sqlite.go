package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"tagmark/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (creating if needed) the cache database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	var dsn string
	if dbPath == ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(DELETE)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	} else {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	ctx := context.Background()
	if err := runMigrations(ctx, db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

type bookmarkRow struct {
	ID        string         `db:"id"`
	URL       string         `db:"url"`
	Title     sql.NullString `db:"title"`
	Tags      sql.NullString `db:"tags"`
	DateAdded sql.NullString `db:"date_added"`
}

func (r *bookmarkRow) toBookmark() *model.Bookmark {
	b := &model.Bookmark{
		ID:  r.ID,
		URL: r.URL,
	}
	if r.Title.Valid {
		b.Title = r.Title.String
	}
	if r.Tags.Valid {
		b.Tags = model.ParseTags(r.Tags.String)
	}
	if r.DateAdded.Valid && r.DateAdded.String != "" {
		b.DateAdded = parseSQLiteTime(r.DateAdded.String)
	}
	return b
}

func insertBookmark(ctx context.Context, tx *sqlx.Tx, b *model.Bookmark) error {
	var dateAdded sql.NullString
	if !b.DateAdded.IsZero() {
		dateAdded.String = b.DateAdded.Format(time.RFC3339)
		dateAdded.Valid = true
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookmarks (id, url, title, tags, date_added)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			tags = excluded.tags,
			date_added = excluded.date_added
	`, b.ID, b.URL, b.Title, model.ComposeTags(b.Tags), dateAdded)
	return err
}

// ReplaceAll swaps the cached bookmark set for the given one.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, bookmarks []*model.Bookmark) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	for _, b := range bookmarks {
		if err := insertBookmark(ctx, tx, b); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bookmark %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// All returns every cached bookmark, most recently added first.
func (s *SQLiteStore) All(ctx context.Context) ([]*model.Bookmark, error) {
	var rows []bookmarkRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, url, title, tags, date_added FROM bookmarks ORDER BY date_added DESC")
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	bookmarks := make([]*model.Bookmark, len(rows))
	for i := range rows {
		bookmarks[i] = rows[i].toBookmark()
	}
	return bookmarks, nil
}

// Get retrieves a cached bookmark by its platform id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Bookmark, error) {
	var row bookmarkRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, url, title, tags, date_added FROM bookmarks WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return row.toBookmark(), nil
}

// Upsert writes a single bookmark into the cache.
func (s *SQLiteStore) Upsert(ctx context.Context, b *model.Bookmark) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := insertBookmark(ctx, tx, b); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert bookmark %s: %w", b.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// EnqueueUpdate records a title update that could not reach the bridge.
// Only the newest update per bookmark is kept.
func (s *SQLiteStore) EnqueueUpdate(ctx context.Context, bookmarkID, rawTitle string) (*PendingUpdate, error) {
	pending := &PendingUpdate{
		ID:         uuid.NewString(),
		BookmarkID: bookmarkID,
		RawTitle:   rawTitle,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM pending_updates WHERE bookmark_id = ?", bookmarkID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("supersede pending update: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO pending_updates (id, bookmark_id, raw_title, created_at) VALUES (?, ?, ?, ?)",
		pending.ID, pending.BookmarkID, pending.RawTitle, pending.CreatedAt.Format(time.RFC3339)); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert pending update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return pending, nil
}

type pendingRow struct {
	ID         string `db:"id"`
	BookmarkID string `db:"bookmark_id"`
	RawTitle   string `db:"raw_title"`
	CreatedAt  string `db:"created_at"`
}

// PendingUpdates returns queued updates, oldest first.
func (s *SQLiteStore) PendingUpdates(ctx context.Context) ([]*PendingUpdate, error) {
	var rows []pendingRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, bookmark_id, raw_title, created_at FROM pending_updates ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("list pending updates: %w", err)
	}

	pending := make([]*PendingUpdate, len(rows))
	for i, row := range rows {
		pending[i] = &PendingUpdate{
			ID:         row.ID,
			BookmarkID: row.BookmarkID,
			RawTitle:   row.RawTitle,
			CreatedAt:  parseSQLiteTime(row.CreatedAt),
		}
	}
	return pending, nil
}

// DeletePending removes a queued update by its queue id.
func (s *SQLiteStore) DeletePending(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM pending_updates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete pending update: %w", err)
	}
	return checkRowsAffected(result, "delete pending update")
}

func checkRowsAffected(result sql.Result, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseSQLiteTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
