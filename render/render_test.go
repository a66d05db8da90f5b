package render

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/models"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(config.SiteConfig{
		Title:   "Test Blog",
		BaseURL: "http://localhost:8080",
		Author:  "tester",
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func testPost(slug, markdown string) *models.Post {
	return &models.Post{
		Slug: slug,
		FrontMatter: models.FrontMatter{
			Layout: "post",
			Title:  "Test Post",
		},
		Published: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Markdown:  markdown,
	}
}

func TestRenderMarkdown_Basics(t *testing.T) {
	r := testRenderer(t)
	post := testPost("basics", "## A Heading\n\nSome *emphasis* and a [link](https://example.com).\n")

	if err := r.RenderMarkdown(post); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		`id="a-heading"`,
		"<em>emphasis</em>",
		`<a href="https://example.com">link</a>`,
	} {
		if !strings.Contains(post.HTML, want) {
			t.Errorf("rendered HTML missing %q\n%s", want, post.HTML)
		}
	}
}

func TestRenderMarkdown_HighlightsFencedCode(t *testing.T) {
	r := testRenderer(t)
	post := testPost("code", "```python\nprint(\"hi\")\n```\n")

	if err := r.RenderMarkdown(post); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The highlighting extension emits a styled <pre> instead of the plain
	// <pre><code> goldmark default.
	if !strings.Contains(post.HTML, "<pre") || !strings.Contains(post.HTML, "print") {
		t.Errorf("expected highlighted code block, got:\n%s", post.HTML)
	}
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	r := testRenderer(t)
	post := testPost("table", "| a | b |\n|---|---|\n| 1 | 2 |\n")

	if err := r.RenderMarkdown(post); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(post.HTML, "<table>") {
		t.Errorf("expected a rendered table, got:\n%s", post.HTML)
	}
}

func TestPostPage_MatchesLayout(t *testing.T) {
	r := testRenderer(t)
	post := testPost("layout-check", "Hello world.\n")

	page, err := r.PostPage(post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := string(page)
	for _, want := range []string{
		"<title>Test Post",
		`<article class="post">`,
		`<h1 class="post-title">`,
		`datetime="2026-01-15"`,
		`<div class="post-content">`,
		"Hello world.",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestPostPage_UnknownLayout(t *testing.T) {
	r := testRenderer(t)
	post := testPost("odd-layout", "Hello.\n")
	post.FrontMatter.Layout = "gallery"

	_, err := r.PostPage(post)
	if err == nil {
		t.Fatal("expected error for layout without a template")
	}
	var be *models.BuildError
	if !errors.As(err, &be) || be.Code != models.ErrCodeRender {
		t.Errorf("expected RENDER_FAILED BuildError, got %v", err)
	}
}

func TestIndexPage_ListsPosts(t *testing.T) {
	r := testRenderer(t)
	posts := []*models.Post{
		testPost("first-post", "one"),
		testPost("second-post", "two"),
	}

	page, err := r.IndexPage(posts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := string(page)
	for _, want := range []string{
		`<ul class="post-list">`,
		`href="/first-post/"`,
		`href="/second-post/"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestBuildSite_WritesExpectedTree(t *testing.T) {
	r := testRenderer(t)
	outDir := t.TempDir()
	posts := []*models.Post{testPost("only-post", "body text")}

	report, err := r.BuildSite(posts, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Error("report.Success = false")
	}
	if report.Posts != 1 {
		t.Errorf("report.Posts = %d, want 1", report.Posts)
	}
	// post page + index + stylesheet
	if report.Pages != 3 {
		t.Errorf("report.Pages = %d, want 3", report.Pages)
	}

	for _, rel := range []string{
		"index.html",
		filepath.Join("only-post", "index.html"),
		filepath.Join("assets", "main.css"),
	} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("expected output file %s: %v", rel, err)
		}
	}
}

func TestNewRenderer_TemplateOverride(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"post.html":  `<html><body>custom {{ .Post.FrontMatter.Title }}</body></html>`,
		"index.html": `<html><body>custom index</body></html>`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r, err := NewRenderer(config.SiteConfig{Title: "T", TemplatesDir: dir})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	page, err := r.PostPage(testPost("x", "y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(page), "custom Test Post") {
		t.Errorf("override template not used:\n%s", page)
	}
}
