// Package cli implements the non-interactive commands. Output follows
// the same plain ANSI table style throughout.
package cli

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"tagmark/internal/app"
	"tagmark/internal/index"
	"tagmark/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Commands handles all CLI command execution against the application
// context.
type Commands struct {
	app *app.App
}

// NewCommands creates a new Commands instance.
func NewCommands(a *app.App) *Commands {
	return &Commands{app: a}
}

// Search refreshes the index and prints ranked matches for query.
func (c *Commands) Search(ctx context.Context, query string) error {
	if err := c.app.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh bookmarks: %w", err)
	}

	results := c.app.Search(query)
	if len(results) == 0 {
		fmt.Println("No bookmarks found.")
		return nil
	}

	return printResultsTable(results)
}

// List prints bookmarks, optionally filtered by tag and capped at limit.
func (c *Commands) List(ctx context.Context, tag string, limit int) error {
	if err := c.app.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh bookmarks: %w", err)
	}

	var results []index.Result
	for _, b := range c.app.Bookmarks() {
		if tag != "" && !b.HasTag(tag) {
			continue
		}
		results = append(results, index.Result{Bookmark: b})
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	if len(results) == 0 {
		fmt.Println("No bookmarks found.")
		return nil
	}
	return printResultsTable(results)
}

// Tags prints the whitelist with per-tag bookmark counts.
func (c *Commands) Tags(ctx context.Context) error {
	if err := c.app.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh bookmarks: %w", err)
	}

	tags := c.app.Whitelist()
	if len(tags) == 0 {
		fmt.Println("No tags found.")
		return nil
	}

	counts := c.app.TagCounts()
	for _, tag := range tags {
		fmt.Printf("%s#%s%s %s(%d)%s\n", colorYellow, tag, colorReset, colorDim, counts[tag], colorReset)
	}
	return nil
}

// EditOptions carries the changes an edit command applies.
type EditOptions struct {
	Title       *string  // nil leaves the title alone
	ReplaceTags []string // non-nil replaces the whole tag set
	AddTags     []string
	RemoveTags  []string
}

// Edit applies the given changes to one bookmark and saves it through
// the bridge.
func (c *Commands) Edit(ctx context.Context, id string, opts EditOptions) error {
	if err := c.app.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh bookmarks: %w", err)
	}

	b := c.app.Edit(id)
	if b == nil {
		fmt.Printf("Bookmark %s%s%s not found.\n", colorBold, id, colorReset)
		return nil
	}

	title := b.Title
	if opts.Title != nil {
		title = *opts.Title
	}

	tags := b.Tags
	if opts.ReplaceTags != nil {
		tags = model.SanitizeTags(opts.ReplaceTags)
	}
	for _, tag := range model.SanitizeTags(opts.AddTags) {
		dup := false
		for _, existing := range tags {
			if existing == tag {
				dup = true
				break
			}
		}
		if !dup {
			tags = append(tags, tag)
		}
	}
	if len(opts.RemoveTags) > 0 {
		remove := make(map[string]bool)
		for _, tag := range model.SanitizeTags(opts.RemoveTags) {
			remove[tag] = true
		}
		var kept []string
		for _, tag := range tags {
			if !remove[tag] {
				kept = append(kept, tag)
			}
		}
		tags = kept
	}

	saved, err := c.app.Save(ctx, id, title, tags)
	if err != nil {
		return fmt.Errorf("save bookmark: %w", err)
	}
	if !saved {
		fmt.Printf("Bookmark %s%s%s not found, nothing saved.\n", colorBold, id, colorReset)
		return nil
	}

	raw := model.TitleWithTags(title, model.SanitizeTags(tags))
	if c.app.Degraded() {
		fmt.Printf("%sQueued%s (bridge offline) %s%s%s: %s\n", colorYellow, colorReset, colorBold, id, colorReset, raw)
	} else {
		fmt.Printf("%sSaved%s %s%s%s: %s\n", colorGreen, colorReset, colorBold, id, colorReset, raw)
	}
	return nil
}

// Open opens a bookmark's URL in the default browser. It fetches the
// single bookmark rather than refreshing the whole index.
func (c *Commands) Open(ctx context.Context, id string) error {
	b := c.app.Lookup(ctx, id)
	if b == nil {
		fmt.Printf("Bookmark %s%s%s not found.\n", colorBold, id, colorReset)
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", b.URL)
	case "linux":
		cmd = exec.Command("xdg-open", b.URL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", b.URL)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}

	fmt.Printf("%sOpened:%s %s%s%s\n", colorGreen, colorReset, colorCyan, b.URL, colorReset)
	return nil
}

// Sync refreshes the cache and replays updates queued while the bridge
// was down.
func (c *Commands) Sync(ctx context.Context) error {
	applied, err := c.app.FlushPending(ctx)
	if err != nil {
		return fmt.Errorf("flush pending updates: %w", err)
	}
	if err := c.app.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh bookmarks: %w", err)
	}

	if c.app.Degraded() {
		fmt.Printf("%sBridge offline%s, cache unchanged. %d update(s) still queued.\n",
			colorYellow, colorReset, c.app.PendingCount(ctx))
		return nil
	}
	fmt.Printf("%sSynced%s %d bookmark(s), applied %d queued update(s).\n",
		colorGreen, colorReset, len(c.app.Bookmarks()), applied)
	return nil
}

// Version prints the version string.
func (c *Commands) Version(version string) {
	fmt.Printf("tagmark version %s\n", version)
}

const (
	maxURLLen   = 60
	maxTitleLen = 40
	maxTagsLen  = 30
	ellipsisLen = 3
)

func printResultsTable(results []index.Result) error {
	colIDLen := len("ID")
	colTitleLen := len("TITLE")
	colTagsLen := len("TAGS")
	colURLLen := len("URL")
	colAddedLen := len("ADDED")

	rows := make([][5]string, len(results))
	for i, r := range results {
		b := r.Bookmark
		rows[i] = [5]string{
			b.ID,
			truncateString(b.Title, maxTitleLen),
			truncateString(model.ComposeTags(b.Tags), maxTagsLen),
			truncateString(b.URL, maxURLLen),
			formatTime(b.DateAdded),
		}
		colIDLen = maxInt(colIDLen, len(rows[i][0]))
		colTitleLen = maxInt(colTitleLen, len(rows[i][1]))
		colTagsLen = maxInt(colTagsLen, len(rows[i][2]))
		colURLLen = maxInt(colURLLen, len(rows[i][3]))
		colAddedLen = maxInt(colAddedLen, len(rows[i][4]))
	}

	header := fmt.Sprintf("%s%-*s  %-*s  %-*s  %-*s  %-*s%s",
		colorBold,
		colIDLen, "ID",
		colTitleLen, "TITLE",
		colTagsLen, "TAGS",
		colURLLen, "URL",
		colAddedLen, "ADDED",
		colorReset)
	fmt.Println(header)
	fmt.Println(colorDim + strings.Repeat("─", colIDLen+colTitleLen+colTagsLen+colURLLen+colAddedLen+8) + colorReset)

	for _, row := range rows {
		fmt.Printf("%s%-*s%s  %-*s  %s%-*s%s  %s%-*s%s  %s%-*s%s\n",
			colorBold+colorCyan, colIDLen, row[0], colorReset,
			colTitleLen, row[1],
			colorYellow, colTagsLen, row[2], colorReset,
			colorCyan, colURLLen, row[3], colorReset,
			colorDim, colAddedLen, row[4], colorReset)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// truncateString shortens s to maxLen runes, never splitting a
// multi-byte character.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-ellipsisLen]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
