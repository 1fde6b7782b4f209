package api

import (
	"github.com/lysyi3m/blog-press/app/content"
	"github.com/lysyi3m/blog-press/app/database"
	"github.com/lysyi3m/blog-press/app/feed"
	"github.com/lysyi3m/blog-press/app/tasks"
)

type BuilderInterface interface {
	Run(posts []content.Post, meta feed.Meta) (string, error)
}

var _ BuilderInterface = (*feed.Builder)(nil)

type Handler struct {
	cache     *content.Cache
	builder   BuilderInterface
	postRepo  database.PostRepository
	scheduler tasks.TaskSchedulerInterface
}
