package api

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/blog-press/app/cfg"
	"github.com/lysyi3m/blog-press/app/content"
	"github.com/lysyi3m/blog-press/app/database"
	"github.com/lysyi3m/blog-press/app/feed"
	"github.com/lysyi3m/blog-press/app/tasks"
)

func NewHandler(cache *content.Cache, postRepo database.PostRepository,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		cache:     cache,
		builder:   feed.NewBuilder(),
		postRepo:  postRepo,
		scheduler: scheduler,
	}
}

func (h *Handler) feedMeta() feed.Meta {
	c := cfg.Get()

	siteURL := c.BaseUrl
	if siteURL == "" {
		siteURL = "http://localhost:" + c.Port
	}

	return feed.Meta{
		Title:       c.SiteTitle,
		Description: c.SiteDescription,
		SiteURL:     siteURL,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	posts := h.cache.GetPublished()

	rss, err := h.builder.Run(posts, h.feedMeta())
	if err != nil {
		slog.Error("Feed generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(posts)))

	c.String(http.StatusOK, rss)
}

type postView struct {
	Title       string
	Description string
	Path        string
	Date        string
	Categories  []string
	HTML        template.HTML
}

func (h *Handler) GetIndex(c *gin.Context) {
	posts := h.cache.GetPublished()

	views := make([]postView, 0, len(posts))
	for _, post := range posts {
		path, err := feed.CanonicalPath(post)
		if err != nil {
			slog.Error("Path derivation error", "post", post.ID, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		views = append(views, postView{
			Title:       post.Title,
			Description: post.Description,
			Path:        path,
			Date:        post.PublishedAt.Format("January 2, 2006"),
			Categories:  post.Categories,
		})
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"SiteTitle":       cfg.Get().SiteTitle,
		"SiteDescription": cfg.Get().SiteDescription,
		"Posts":           views,
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	requested := "/" + c.Param("year") + "/" + c.Param("month") + "/" + c.Param("day") + "/" + c.Param("slug")

	for _, post := range h.cache.GetPublished() {
		path, err := feed.CanonicalPath(post)
		if err != nil {
			slog.Error("Path derivation error", "post", post.ID, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		if path != requested {
			continue
		}

		c.HTML(http.StatusOK, "post.html", gin.H{
			"SiteTitle": cfg.Get().SiteTitle,
			"Post": postView{
				Title:       post.Title,
				Description: post.Description,
				Path:        path,
				Date:        post.PublishedAt.Format("January 2, 2006"),
				Categories:  post.Categories,
				HTML:        template.HTML(post.HTML),
			},
		})
		return
	}

	c.Status(http.StatusNotFound)
}

func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter 'q'"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	results, err := h.postRepo.Search(query, limit)
	if err != nil {
		slog.Error("Search error", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	items := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		post, err := h.cache.GetPost(result.ID)
		if err != nil {
			// Index lags behind a recent deletion; skip the stale hit.
			continue
		}
		path, err := feed.CanonicalPath(*post)
		if err != nil {
			slog.Error("Path derivation error", "post", post.ID, "error", err)
			continue
		}
		items = append(items, map[string]interface{}{
			"title":        result.Title,
			"description":  result.Description,
			"path":         path,
			"published_at": result.PublishedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": items,
		"total":   len(items),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"posts":     h.cache.GetPostCount(),
	}

	if indexed, err := h.postRepo.GetPostCount(); err == nil {
		health["indexed_posts"] = indexed
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListPosts(c *gin.Context) {
	posts := h.cache.GetAll()

	items := make([]map[string]interface{}, 0, len(posts))
	for _, post := range posts {
		item := map[string]interface{}{
			"id":           post.ID,
			"title":        post.Title,
			"description":  post.Description,
			"published_at": post.PublishedAt.Format(time.RFC3339),
			"categories":   post.Categories,
			"draft":        post.Draft,
		}
		if path, err := feed.CanonicalPath(post); err == nil {
			item["path"] = path
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"posts": items,
		"total": len(items),
	})
}

func (h *Handler) APIReload(c *gin.Context) {
	reloadTask := tasks.NewReloadPostsTask(h.cache)
	if err := h.scheduler.EnqueueTask(reloadTask); err != nil {
		slog.Error("Error enqueueing reload task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue reload task",
			"details": err.Error(),
		})
		return
	}

	indexTask := tasks.NewIndexPostsTask(h.cache, h.postRepo)
	if err := h.scheduler.EnqueueTask(indexTask); err != nil {
		slog.Error("Error enqueueing index task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue index task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reload and index tasks enqueued successfully",
		"tasks": []gin.H{
			{"id": reloadTask.ID, "type": reloadTask.Type},
			{"id": indexTask.ID, "type": indexTask.Type},
		},
	})
}
