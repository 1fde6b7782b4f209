package content

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var postIDPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-.+`)

type Cache struct {
	postsDir string
	markdown goldmark.Markdown
	cache    map[string]*Post
	mu       sync.RWMutex
}

func NewCache(postsDir string) *Cache {
	return &Cache{
		postsDir: postsDir,
		markdown: goldmark.New(),
		cache:    make(map[string]*Post),
	}
}

// Run scans the posts directory and replaces the cache with the current
// set of posts. Any invalid post file fails the whole scan.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.postsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.postsDir, "*.md"))
	if err != nil {
		return fmt.Errorf("failed to find markdown files: %w", err)
	}

	loaded := make(map[string]*Post, len(files))
	for _, file := range files {
		post, err := c.loadFile(file)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}
		loaded[post.ID] = post

		slog.Debug("Post loaded", "id", post.ID, "title", post.Title, "draft", post.Draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = loaded

	return nil
}

func (c *Cache) GetPost(id string) (*Post, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	post, ok := c.cache[id]
	if !ok {
		return nil, fmt.Errorf("post with id '%s' not found", id)
	}
	return post, nil
}

// GetPublished returns all non-draft posts ordered newest first. Posts
// sharing a publish date are ordered by ID so repeated calls always
// produce the same sequence.
func (c *Cache) GetPublished() []Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	posts := make([]Post, 0, len(c.cache))
	for _, post := range c.cache {
		if post.Draft {
			continue
		}
		posts = append(posts, *post)
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		}
		return posts[i].ID < posts[j].ID
	})

	return posts
}

func (c *Cache) GetAll() []Post {
	c.mu.RLock()
	defer c.mu.RUnlock()

	posts := make([]Post, 0, len(c.cache))
	for _, post := range c.cache {
		posts = append(posts, *post)
	}

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		}
		return posts[i].ID < posts[j].ID
	})

	return posts
}

func (c *Cache) GetPostCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) loadFile(path string) (*Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	fileName := filepath.Base(path)
	id := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	fmData, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal(fmData, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	var buf bytes.Buffer
	if err := c.markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	post := &Post{
		ID:          id,
		Title:       norm.NFC.String(fm.Title),
		Description: norm.NFC.String(fm.Description),
		PublishedAt: fm.Date,
		Categories:  fm.Categories,
		Draft:       fm.Draft,
		Body:        string(body),
		HTML:        buf.String(),
	}

	if err := validatePost(post); err != nil {
		return nil, err
	}

	return post, nil
}

func validatePost(post *Post) error {
	if !postIDPattern.MatchString(post.ID) {
		return fmt.Errorf("post id '%s' must start with a YYYY-MM-DD- date prefix", post.ID)
	}
	if post.Title == "" {
		return fmt.Errorf("post title is required")
	}
	if post.PublishedAt.IsZero() {
		return fmt.Errorf("post date is required")
	}
	return nil
}

// splitFrontMatter separates the leading YAML document, delimited by
// "---" lines, from the markdown body.
func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	const delimiter = "---"

	rest, ok := strings.CutPrefix(string(data), delimiter+"\n")
	if !ok {
		return nil, nil, fmt.Errorf("missing front matter opening delimiter")
	}

	idx := strings.Index(rest, "\n"+delimiter)
	if idx < 0 {
		return nil, nil, fmt.Errorf("missing front matter closing delimiter")
	}

	fm := rest[:idx]
	body := rest[idx+len("\n"+delimiter):]
	body = strings.TrimPrefix(body, "\n")

	return []byte(fm), []byte(body), nil
}
