package content

import (
	"time"
)

// Post is a single authored entry loaded from the posts directory.
// ID is the filename stem and always carries a YYYY-MM-DD- prefix
// followed by the slug.
type Post struct {
	ID          string
	Title       string
	Description string
	PublishedAt time.Time
	Categories  []string
	Draft       bool
	Body        string // raw markdown
	HTML        string // rendered body
}

type frontMatter struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Date        time.Time `yaml:"date"`
	Categories  []string  `yaml:"categories"`
	Draft       bool      `yaml:"draft"`
}
