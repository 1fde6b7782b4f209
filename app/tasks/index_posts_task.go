package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/blog-press/app/content"
	"github.com/lysyi3m/blog-press/app/database"
)

// IndexPostsTask syncs the in-memory post cache into the SQLite search
// index: upserts every cached post and removes rows for posts that no
// longer exist on disk.
type IndexPostsTask struct {
	Task
	cache    *content.Cache
	postRepo database.PostRepository
}

func NewIndexPostsTask(cache *content.Cache, postRepo database.PostRepository) *IndexPostsTask {
	return &IndexPostsTask{
		Task:     NewTask(TaskTypeIndexPosts),
		cache:    cache,
		postRepo: postRepo,
	}
}

func (t *IndexPostsTask) Execute(ctx context.Context) error {
	posts := t.cache.GetAll()

	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := t.postRepo.UpsertPost(post); err != nil {
			return fmt.Errorf("failed to index post '%s': %w", post.ID, err)
		}
		ids = append(ids, post.ID)
	}

	removed, err := t.postRepo.DeleteMissing(ids)
	if err != nil {
		return fmt.Errorf("failed to prune index: %w", err)
	}

	slog.Debug("Posts indexed", "count", len(ids), "removed", removed, "duration", t.GetDuration().String())

	return nil
}
