package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/blog-press/app/content"
)

var testMeta = Meta{
	Title:       "Test Blog",
	Description: "A test blog",
	SiteURL:     "https://blog.example.com",
}

func TestCanonicalPath(t *testing.T) {
	post := content.Post{
		ID:          "2019-09-12-slacking-around",
		Title:       "Slacking Around",
		PublishedAt: time.Date(2019, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	path, err := CanonicalPath(post)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if path != "/2019/09/12/slacking-around" {
		t.Errorf("Expected path '/2019/09/12/slacking-around', got '%s'", path)
	}
}

func TestCanonicalPathDateFieldWinsOverIdentifierPrefix(t *testing.T) {
	// A post re-dated after authoring keeps its identifier but the path
	// segments follow the publish date.
	post := content.Post{
		ID:          "2019-09-12-slacking-around",
		Title:       "Slacking Around",
		PublishedAt: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	path, err := CanonicalPath(post)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if path != "/2020/01/02/slacking-around" {
		t.Errorf("Expected path '/2020/01/02/slacking-around', got '%s'", path)
	}
}

func TestSlugRejectsMissingDatePrefix(t *testing.T) {
	post := content.Post{
		ID:          "slacking-around",
		Title:       "Slacking Around",
		PublishedAt: time.Date(2019, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	if _, err := Slug(post); err == nil {
		t.Error("Expected error for identifier without date prefix")
	}
}

func TestRunOrdering(t *testing.T) {
	builder := NewBuilder()

	posts := []content.Post{
		{ID: "2019-01-01-oldest", Title: "Oldest", PublishedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2021-06-15-newest", Title: "Newest", PublishedAt: time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "2020-03-10-middle", Title: "Middle", PublishedAt: time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	rss, err := builder.Run(posts, testMeta)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS should parse, got: %v", err)
	}

	if len(parsed.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(parsed.Items))
	}

	expected := []string{"Newest", "Middle", "Oldest"}
	for i, title := range expected {
		if parsed.Items[i].Title != title {
			t.Errorf("Expected item %d to be '%s', got '%s'", i, title, parsed.Items[i].Title)
		}
	}

	for i := 1; i < len(parsed.Items); i++ {
		if parsed.Items[i].PublishedParsed.After(*parsed.Items[i-1].PublishedParsed) {
			t.Errorf("Items should be in descending date order")
		}
	}
}

func TestRunStableForEqualDates(t *testing.T) {
	builder := NewBuilder()

	date := time.Date(2020, 5, 5, 12, 0, 0, 0, time.UTC)
	posts := []content.Post{
		{ID: "2020-05-05-alpha", Title: "Alpha", PublishedAt: date},
		{ID: "2020-05-05-beta", Title: "Beta", PublishedAt: date},
		{ID: "2020-05-05-gamma", Title: "Gamma", PublishedAt: date},
	}

	first, err := builder.Run(posts, testMeta)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Ties keep the input order.
	alphaIdx := strings.Index(first, "<title>Alpha</title>")
	betaIdx := strings.Index(first, "<title>Beta</title>")
	gammaIdx := strings.Index(first, "<title>Gamma</title>")
	if !(alphaIdx < betaIdx && betaIdx < gammaIdx) {
		t.Error("Posts with equal dates should keep their input order")
	}

	for i := 0; i < 5; i++ {
		again, err := builder.Run(posts, testMeta)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if again != first {
			t.Fatal("Rebuilding from the same input should be byte-identical")
		}
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	builder := NewBuilder()

	posts := []content.Post{
		{ID: "2019-01-01-oldest", Title: "Oldest", PublishedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2021-06-15-newest", Title: "Newest", PublishedAt: time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	if _, err := builder.Run(posts, testMeta); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if posts[0].ID != "2019-01-01-oldest" || posts[1].ID != "2021-06-15-newest" {
		t.Error("Run should not reorder the input slice")
	}
}

func TestRunLinks(t *testing.T) {
	builder := NewBuilder()

	posts := []content.Post{
		{
			ID:          "2019-09-12-slacking-around",
			Title:       "Slacking Around",
			Description: "On doing nothing",
			PublishedAt: time.Date(2019, 9, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	rss, err := builder.Run(posts, testMeta)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, "<link>https://blog.example.com/2019/09/12/slacking-around</link>") {
		t.Error("RSS should contain the absolute canonical link")
	}
	if !strings.Contains(rss, `<guid isPermaLink="true">https://blog.example.com/2019/09/12/slacking-around</guid>`) {
		t.Error("RSS should use the canonical link as permalink GUID")
	}
	if !strings.Contains(rss, "<description>On doing nothing</description>") {
		t.Error("RSS should contain the item description")
	}
	if !strings.Contains(rss, "<pubDate>Thu, 12 Sep 2019 00:00:00 +0000</pubDate>") {
		t.Error("RSS should contain the item pubDate")
	}
}

func TestRunTrailingSlashSiteURL(t *testing.T) {
	builder := NewBuilder()

	posts := []content.Post{
		{ID: "2019-09-12-slacking-around", Title: "Slacking Around", PublishedAt: time.Date(2019, 9, 12, 0, 0, 0, 0, time.UTC)},
	}

	meta := testMeta
	meta.SiteURL = "https://blog.example.com/"

	rss, err := builder.Run(posts, meta)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(rss, "https://blog.example.com//") {
		t.Error("A trailing slash in the site URL should not double up in links")
	}
}

func TestRunEscaping(t *testing.T) {
	builder := NewBuilder()

	title := `Generics <T> & "constraints" > hype`
	posts := []content.Post{
		{
			ID:          "2020-02-02-generics",
			Title:       title,
			Description: "a < b && b > c",
			PublishedAt: time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	rss, err := builder.Run(posts, testMeta)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(rss, "<title>"+title+"</title>") {
		t.Error("Reserved characters must not appear unescaped")
	}

	// Round-trip through a standard parser restores the plain strings.
	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS should parse, got: %v", err)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(parsed.Items))
	}
	if parsed.Items[0].Title != title {
		t.Errorf("Expected title to round-trip, got '%s'", parsed.Items[0].Title)
	}
	if parsed.Items[0].Description != "a < b && b > c" {
		t.Errorf("Expected description to round-trip, got '%s'", parsed.Items[0].Description)
	}
}

func TestRunEmptyInput(t *testing.T) {
	builder := NewBuilder()

	rss, err := builder.Run(nil, testMeta)
	if err != nil {
		t.Fatalf("Empty input is valid, got error: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS should parse, got: %v", err)
	}

	if len(parsed.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(parsed.Items))
	}
	if parsed.Title != "Test Blog" {
		t.Errorf("Expected feed title 'Test Blog', got '%s'", parsed.Title)
	}
	if parsed.Description != "A test blog" {
		t.Errorf("Expected feed description 'A test blog', got '%s'", parsed.Description)
	}
}

func TestRunRejectsMalformedIdentifier(t *testing.T) {
	builder := NewBuilder()

	posts := []content.Post{
		{ID: "2020-01-01-fine", Title: "Fine", PublishedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "not-dated", Title: "Broken", PublishedAt: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	if _, err := builder.Run(posts, testMeta); err == nil {
		t.Error("A malformed identifier should fail the whole build")
	}
}

func TestRunRejectsMissingTitle(t *testing.T) {
	builder := NewBuilder()

	posts := []content.Post{
		{ID: "2020-01-01-untitled", PublishedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	if _, err := builder.Run(posts, testMeta); err == nil {
		t.Error("A missing title should fail the build")
	}
}
