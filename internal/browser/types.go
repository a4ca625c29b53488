package browser

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"tagmark/internal/model"
)

// The bridge is the companion WebExtension's loopback HTTP server. It
// proxies the browser's native bookmarks capability, which only exposes
// update(id, {title}); there is no tags field at this boundary.

// HTTPError represents an unexpected HTTP status from the bridge with
// the raw response body kept for debugging.
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface for HTTPError.
func (e HTTPError) Error() string {
	return fmt.Sprintf("bridge error (HTTP %d): %s", e.StatusCode, e.Body)
}

// IsClientError returns true for 4xx HTTP status codes.
func (e HTTPError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// readHTTPError reads the response body into an HTTPError.
func readHTTPError(resp *http.Response) HTTPError {
	body, readErr := io.ReadAll(resp.Body)
	bodyStr := string(body)
	if readErr != nil {
		bodyStr += fmt.Sprintf(" (body read error: %v)", readErr)
	}
	return HTTPError{StatusCode: resp.StatusCode, Body: bodyStr}
}

// bookmarkRecord is the bridge's wire representation of one bookmark.
// DateAdded is milliseconds since epoch, as the browser reports it.
type bookmarkRecord struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	DateAdded int64  `json:"dateAdded"`
}

func (r bookmarkRecord) toBookmark() *model.Bookmark {
	var added time.Time
	if r.DateAdded > 0 {
		added = time.UnixMilli(r.DateAdded).UTC()
	}
	return model.FromRawTitle(r.ID, r.URL, r.Title, added)
}

// listResponse is the body of GET /api/bookmarks.
type listResponse struct {
	Bookmarks []bookmarkRecord `json:"bookmarks"`
}

// updateRequest is the body of PATCH /api/bookmarks/{id}. Title carries
// the full serialized form, tag suffix included.
type updateRequest struct {
	Title string `json:"title"`
}
