package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/blog-press/app/content"
)

var datePrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Slug returns the post identifier with its leading date prefix removed.
func Slug(post content.Post) (string, error) {
	prefix := datePrefixPattern.FindString(post.ID)
	if prefix == "" {
		return "", fmt.Errorf("post id '%s' has no YYYY-MM-DD- date prefix", post.ID)
	}
	return post.ID[len(prefix):], nil
}

// CanonicalPath derives the public path /{YYYY}/{MM}/{DD}/{slug} for a
// post. The date segments come from PublishedAt, the slug from the
// identifier; the two may legitimately diverge when a post is re-dated
// after authoring, and the date field is authoritative for the path.
func CanonicalPath(post content.Post) (string, error) {
	slug, err := Slug(post)
	if err != nil {
		return "", err
	}

	year, month, day := post.PublishedAt.Date()
	return fmt.Sprintf("/%04d/%02d/%02d/%s", year, int(month), day, slug), nil
}

// Run renders the complete RSS 2.0 document for the given posts, newest
// first. It is a pure function of its inputs: no I/O, no mutation of the
// posts slice, identical output for identical input.
func (b *Builder) Run(posts []content.Post, meta Meta) (string, error) {
	ordered := make([]content.Post, len(posts))
	copy(ordered, posts)

	// Stable sort keeps the input order for posts sharing a publish
	// date, so rebuilds from the same collection are byte-identical.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
	})

	siteURL := strings.TrimSuffix(meta.SiteURL, "/")

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	b.writeElement(&buf, "title", meta.Title, 4)
	b.writeElement(&buf, "link", siteURL, 4)
	b.writeElement(&buf, "description", meta.Description, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(siteURL+"/rss.xml")))

	if len(ordered) > 0 {
		b.writeElement(&buf, "lastBuildDate", ordered[0].PublishedAt.Format(time.RFC1123Z), 4)
	}
	b.writeElement(&buf, "generator", "blog-press", 4)

	for _, post := range ordered {
		if err := b.writeItem(&buf, post, siteURL); err != nil {
			return "", err
		}
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (b *Builder) writeItem(buf *bytes.Buffer, post content.Post, siteURL string) error {
	if post.Title == "" {
		return fmt.Errorf("post '%s' has no title", post.ID)
	}

	path, err := CanonicalPath(post)
	if err != nil {
		return err
	}
	link := siteURL + path

	buf.WriteString("    <item>\n")

	buf.WriteString(`      <guid isPermaLink="true">`)
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	b.writeElement(buf, "title", post.Title, 6)
	b.writeElement(buf, "link", link, 6)
	b.writeElement(buf, "description", post.Description, 6)
	b.writeElement(buf, "pubDate", post.PublishedAt.Format(time.RFC1123Z), 6)

	for _, category := range post.Categories {
		if category != "" {
			b.writeElement(buf, "category", category, 6)
		}
	}

	buf.WriteString("    </item>\n")

	return nil
}

func (b *Builder) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
