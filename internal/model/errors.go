package model

import "errors"

var (
	// ErrNotFound indicates a bookmark was not found.
	ErrNotFound = errors.New("bookmark not found")

	// ErrInvalidURL indicates an invalid URL was provided.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrMissingID indicates a bookmark without a platform identifier.
	ErrMissingID = errors.New("missing bookmark ID")

	// ErrUnavailable indicates the browser bridge cannot be reached.
	ErrUnavailable = errors.New("bookmarks bridge unavailable")
)
