// Package index holds the in-memory search index over the browser's
// bookmarks. It is rebuilt wholesale after every refresh or save; the
// bridge remains the source of truth.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"tagmark/internal/model"
)

// Index is a snapshot of all bookmarks with fuzzy search over them.
type Index struct {
	mu        sync.RWMutex
	bookmarks []*model.Bookmark
	byID      map[string]*model.Bookmark
}

// Result is one ranked search hit. MatchedIndexes are byte offsets into
// the bookmark's display title; offsets that fell outside the title
// (matches in tags or URL) are dropped so they can feed highlighting
// directly.
type Result struct {
	Bookmark       *model.Bookmark
	Score          int
	MatchedIndexes []int
}

// New returns an empty index.
func New() *Index {
	return &Index{byID: make(map[string]*model.Bookmark)}
}

// Rebuild replaces the whole index with the given bookmarks, most
// recently added first.
func (idx *Index) Rebuild(bookmarks []*model.Bookmark) {
	sorted := make([]*model.Bookmark, len(bookmarks))
	copy(sorted, bookmarks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DateAdded.After(sorted[j].DateAdded)
	})

	byID := make(map[string]*model.Bookmark, len(sorted))
	for _, b := range sorted {
		byID[b.ID] = b
	}

	idx.mu.Lock()
	idx.bookmarks = sorted
	idx.byID = byID
	idx.mu.Unlock()
}

// Len returns the number of indexed bookmarks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.bookmarks)
}

// Get returns the bookmark with the given id, or nil if unknown.
func (idx *Index) Get(id string) *model.Bookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.byID[id]
}

// All returns every bookmark in recency order.
func (idx *Index) All() []*model.Bookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]*model.Bookmark(nil), idx.bookmarks...)
}

// Replace swaps the entry with the same ID for b, keeping order. Unknown
// ids are ignored; the caller has already logged that condition.
func (idx *Index) Replace(b *model.Bookmark) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.byID[b.ID]; !ok {
		return
	}
	idx.byID[b.ID] = b
	for i, existing := range idx.bookmarks {
		if existing.ID == b.ID {
			idx.bookmarks[i] = b
			return
		}
	}
}

// source adapts the bookmark slice to fuzzy.Source. The haystack per
// entry is the display title followed by the tag suffix and URL, so a
// query can hit any of the three.
type source []*model.Bookmark

func (s source) String(i int) string {
	b := s[i]
	parts := []string{b.Title}
	if suffix := model.ComposeTags(b.Tags); suffix != "" {
		parts = append(parts, suffix)
	}
	parts = append(parts, b.URL)
	return strings.Join(parts, " ")
}

func (s source) Len() int { return len(s) }

// Search returns ranked fuzzy matches for query. An empty query returns
// every bookmark in recency order with no match offsets. limit <= 0
// means unlimited.
func (idx *Index) Search(query string, limit int) []Result {
	idx.mu.RLock()
	bookmarks := idx.bookmarks
	idx.mu.RUnlock()

	if strings.TrimSpace(query) == "" {
		n := len(bookmarks)
		if limit > 0 && limit < n {
			n = limit
		}
		results := make([]Result, n)
		for i := 0; i < n; i++ {
			results[i] = Result{Bookmark: bookmarks[i]}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, source(bookmarks))

	var results []Result
	for _, match := range matches {
		if limit > 0 && len(results) >= limit {
			break
		}
		b := bookmarks[match.Index]
		titleLen := len(b.Title)
		var inTitle []int
		for _, mi := range match.MatchedIndexes {
			if mi < titleLen {
				inTitle = append(inTitle, mi)
			}
		}
		results = append(results, Result{
			Bookmark:       b,
			Score:          match.Score,
			MatchedIndexes: inTitle,
		})
	}
	return results
}

// Tags returns the whitelist: every distinct tag across all bookmarks,
// case-sensitive identity, sorted alphabetically for display.
func (idx *Index) Tags() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool)
	var tags []string
	for _, b := range idx.bookmarks {
		for _, tag := range b.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// TagCounts returns how many bookmarks carry each tag.
func (idx *Index) TagCounts() map[string]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	counts := make(map[string]int)
	for _, b := range idx.bookmarks {
		for _, tag := range b.Tags {
			counts[tag]++
		}
	}
	return counts
}
