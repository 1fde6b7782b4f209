package database

import (
	"time"
)

// IndexedPost is a post row in the search index.
type IndexedPost struct {
	ID          string
	Title       string
	Description string
	PublishedAt time.Time
	Draft       bool
}

// SearchResult is a single full-text search hit, best match first.
type SearchResult struct {
	ID          string
	Title       string
	Description string
	PublishedAt time.Time
}
