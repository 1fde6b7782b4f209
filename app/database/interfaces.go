package database

import (
	"github.com/lysyi3m/blog-press/app/content"
)

type PostRepository interface {
	UpsertPost(post content.Post) error
	DeleteMissing(keepIDs []string) (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	GetPostCount() (int, error)
}
