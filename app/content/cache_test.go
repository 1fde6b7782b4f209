package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writePost(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write post file: %v", err)
	}
}

func TestRunLoadsPosts(t *testing.T) {
	dir := t.TempDir()

	writePost(t, dir, "2019-09-12-slacking-around.md", `---
title: Slacking Around
description: On doing nothing
date: 2019-09-12
categories:
  - life
---
Some **markdown** body.
`)

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cache.GetPostCount() != 1 {
		t.Fatalf("Expected 1 post, got %d", cache.GetPostCount())
	}

	post, err := cache.GetPost("2019-09-12-slacking-around")
	if err != nil {
		t.Fatalf("Expected post, got error: %v", err)
	}

	if post.Title != "Slacking Around" {
		t.Errorf("Expected title 'Slacking Around', got '%s'", post.Title)
	}
	if post.Description != "On doing nothing" {
		t.Errorf("Expected description 'On doing nothing', got '%s'", post.Description)
	}
	if !post.PublishedAt.Equal(time.Date(2019, 9, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected publish date: %v", post.PublishedAt)
	}
	if len(post.Categories) != 1 || post.Categories[0] != "life" {
		t.Errorf("Unexpected categories: %v", post.Categories)
	}
	if !strings.Contains(post.HTML, "<strong>markdown</strong>") {
		t.Errorf("Body should be rendered to HTML, got: %s", post.HTML)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := cache.Run(); err != nil {
		t.Errorf("Missing posts directory should not be an error, got: %v", err)
	}
	if cache.GetPostCount() != 0 {
		t.Errorf("Expected 0 posts, got %d", cache.GetPostCount())
	}
}

func TestRunRejectsMissingTitle(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "2020-01-01-untitled.md", `---
date: 2020-01-01
---
Body.
`)

	cache := NewCache(dir)
	err := cache.Run()
	if err == nil {
		t.Fatal("Expected error for post without title")
	}
	if !strings.Contains(err.Error(), "title is required") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunRejectsBadIdentifier(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "hello-world.md", `---
title: Hello World
date: 2020-01-01
---
Body.
`)

	cache := NewCache(dir)
	err := cache.Run()
	if err == nil {
		t.Fatal("Expected error for post without date prefix in filename")
	}
	if !strings.Contains(err.Error(), "date prefix") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunRejectsMissingFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "2020-01-01-no-front-matter.md", "Just a body.\n")

	cache := NewCache(dir)
	if err := cache.Run(); err == nil {
		t.Fatal("Expected error for post without front matter")
	}
}

func TestGetPublishedOrderingAndDrafts(t *testing.T) {
	dir := t.TempDir()

	writePost(t, dir, "2020-01-02-second.md", `---
title: Second
date: 2020-01-02
---
Body.
`)
	writePost(t, dir, "2021-03-04-third.md", `---
title: Third
date: 2021-03-04
---
Body.
`)
	writePost(t, dir, "2019-01-01-first.md", `---
title: First
date: 2019-01-01
---
Body.
`)
	writePost(t, dir, "2022-01-01-hidden.md", `---
title: Hidden
date: 2022-01-01
draft: true
---
Body.
`)

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	posts := cache.GetPublished()
	if len(posts) != 3 {
		t.Fatalf("Expected 3 published posts, got %d", len(posts))
	}

	expected := []string{"2021-03-04-third", "2020-01-02-second", "2019-01-01-first"}
	for i, id := range expected {
		if posts[i].ID != id {
			t.Errorf("Expected post %d to be '%s', got '%s'", i, id, posts[i].ID)
		}
	}

	if len(cache.GetAll()) != 4 {
		t.Errorf("Expected 4 posts including draft, got %d", len(cache.GetAll()))
	}
}

func TestRunReplacesRemovedPosts(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "2020-01-01-keep.md", `---
title: Keep
date: 2020-01-01
---
Body.
`)
	writePost(t, dir, "2020-01-02-remove.md", `---
title: Remove
date: 2020-01-02
---
Body.
`)

	cache := NewCache(dir)
	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cache.GetPostCount() != 2 {
		t.Fatalf("Expected 2 posts, got %d", cache.GetPostCount())
	}

	if err := os.Remove(filepath.Join(dir, "2020-01-02-remove.md")); err != nil {
		t.Fatalf("Failed to remove post file: %v", err)
	}

	if err := cache.Run(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cache.GetPostCount() != 1 {
		t.Errorf("Expected 1 post after rescan, got %d", cache.GetPostCount())
	}
	if _, err := cache.GetPost("2020-01-02-remove"); err == nil {
		t.Error("Removed post should not be in the cache")
	}
}
