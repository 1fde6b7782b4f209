package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/blog-press/app/content"
)

var _ PostRepository = (*SQLPostRepository)(nil)

// SQLPostRepository maintains the full-text search index over posts.
type SQLPostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

// UpsertPost inserts or updates a post in the index.
func (r *SQLPostRepository) UpsertPost(post content.Post) error {
	draft := 0
	if post.Draft {
		draft = 1
	}

	_, err := r.db.Exec(`
		INSERT INTO posts (id, title, description, body, published_at, draft, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			body = excluded.body,
			published_at = excluded.published_at,
			draft = excluded.draft,
			updated_at = excluded.updated_at
	`, post.ID, post.Title, post.Description, post.Body,
		post.PublishedAt.UTC().Format(time.RFC3339), draft,
		time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

// DeleteMissing removes indexed posts whose IDs are no longer present in
// the content directory. Returns the number of rows removed.
func (r *SQLPostRepository) DeleteMissing(keepIDs []string) (int, error) {
	if len(keepIDs) == 0 {
		result, err := r.db.Exec("DELETE FROM posts")
		if err != nil {
			return 0, fmt.Errorf("failed to clear posts: %w", err)
		}
		removed, _ := result.RowsAffected()
		return int(removed), nil
	}

	placeholders := make([]string, len(keepIDs))
	args := make([]interface{}, len(keepIDs))
	for i, id := range keepIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	result, err := r.db.Exec(
		fmt.Sprintf("DELETE FROM posts WHERE id NOT IN (%s)", strings.Join(placeholders, ", ")),
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete missing posts: %w", err)
	}

	removed, _ := result.RowsAffected()
	return int(removed), nil
}

// Search runs a full-text query over titles, descriptions and bodies of
// published posts, best match first.
func (r *SQLPostRepository) Search(query string, limit int) ([]SearchResult, error) {
	match := prepareMatchQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}

	rows, err := r.db.Query(`
		SELECT p.id, p.title, p.description, p.published_at
		FROM posts_fts f
		JOIN posts p ON p.rowid = f.rowid
		WHERE posts_fts MATCH ? AND p.draft = 0
		ORDER BY f.rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var result SearchResult
		var publishedAt string
		if err := rows.Scan(&result.ID, &result.Title, &result.Description, &publishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		result.PublishedAt, err = time.Parse(time.RFC3339, publishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse published_at: %w", err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}

// GetPostCount returns the total number of indexed posts.
func (r *SQLPostRepository) GetPostCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

// prepareMatchQuery turns free-form user input into an FTS5 match
// expression. Each term is quoted so reserved query syntax cannot leak
// through.
func prepareMatchQuery(query string) string {
	var terms []string
	for _, term := range strings.Fields(query) {
		term = strings.ToLower(strings.ReplaceAll(term, `"`, ""))
		if term == "" {
			continue
		}
		terms = append(terms, fmt.Sprintf(`"%s"`, term))
	}
	return strings.Join(terms, " ")
}
