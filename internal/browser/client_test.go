package browser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagmark/internal/model"
)

func testClient(url string, opts ...Option) *Client {
	base := []Option{WithMaxRetries(3), WithRetryWait(time.Millisecond)}
	return NewClient(url, "test-token", append(base, opts...)...)
}

func TestClientList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/bookmarks", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(listResponse{Bookmarks: []bookmarkRecord{
			{ID: "1", URL: "https://example.com", Title: "Example #work #urgent", DateAdded: 1767225600000},
			{ID: "2", URL: "https://go.dev", Title: "The Go Programming Language"},
		}})
	}))
	defer server.Close()

	bookmarks, err := testClient(server.URL).List(context.Background())
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)

	assert.Equal(t, "Example", bookmarks[0].Title)
	assert.Equal(t, []string{"work", "urgent"}, bookmarks[0].Tags)
	assert.Equal(t, time.UnixMilli(1767225600000).UTC(), bookmarks[0].DateAdded)
	assert.Empty(t, bookmarks[1].Tags)
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/bookmarks/abc", r.URL.Path)

		_ = json.NewEncoder(w).Encode(bookmarkRecord{
			ID: "abc", URL: "https://example.com", Title: "Example #work", DateAdded: 1767225600000,
		})
	}))
	defer server.Close()

	b, err := testClient(server.URL).Get(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", b.ID)
	assert.Equal(t, "Example", b.Title)
	assert.Equal(t, []string{"work"}, b.Tags)
}

func TestClientGetNotFound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, attempts, "not-found must not be retried")
}

func TestClientUpdate(t *testing.T) {
	var gotBody updateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/bookmarks/abc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := testClient(server.URL).Update(context.Background(), "abc", "Example2 #work #urgent")
	require.NoError(t, err)
	assert.Equal(t, "Example2 #work #urgent", gotBody.Title)
}

func TestClientUpdateNotFound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := testClient(server.URL).Update(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 1, attempts, "not-found must not be retried")
}

func TestClientRetries(t *testing.T) {
	tests := map[string]struct {
		responses    []int
		wantErr      bool
		wantAttempts int
	}{
		"success first attempt":        {responses: []int{http.StatusOK}, wantAttempts: 1},
		"server error then success":    {responses: []int{http.StatusInternalServerError, http.StatusOK}, wantAttempts: 2},
		"server error exhausts":        {responses: []int{500, 500, 500}, wantErr: true, wantAttempts: 3},
		"client error returns at once": {responses: []int{http.StatusBadRequest}, wantErr: true, wantAttempts: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := tc.responses[min(attempts, len(tc.responses)-1)]
				attempts++
				if status == http.StatusOK {
					_ = json.NewEncoder(w).Encode(listResponse{})
					return
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			_, err := testClient(server.URL).List(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.wantAttempts, attempts)
		})
	}
}

func TestClientUnavailable(t *testing.T) {
	// A closed server port behaves like the bridge being absent.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := testClient(server.URL).List(context.Background())
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestClientContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(server.URL).List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
