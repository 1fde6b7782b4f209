package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/blog-press/app/content"
)

// ReloadPostsTask rescans the posts directory into the in-memory cache.
// A single invalid post file fails the reload; the previous cache stays
// in place so readers never see a partial content set.
type ReloadPostsTask struct {
	Task
	cache *content.Cache
}

func NewReloadPostsTask(cache *content.Cache) *ReloadPostsTask {
	return &ReloadPostsTask{
		Task:  NewTask(TaskTypeReloadPosts),
		cache: cache,
	}
}

func (t *ReloadPostsTask) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.cache.Run(); err != nil {
		return fmt.Errorf("failed to reload posts: %w", err)
	}

	slog.Debug("Posts reloaded", "count", t.cache.GetPostCount(), "duration", t.GetDuration().String())

	return nil
}
