package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kxue43/tech-blog/cache"
	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/fetch"
	"github.com/kxue43/tech-blog/models"
)

const builtPostPage = `<!DOCTYPE html>
<html><head><title>A Post | Blog</title></head>
<body>
<article class="post">
  <h1 class="post-title">A Post</h1>
  <time datetime="2026-01-15">Jan 15, 2026</time>
  <div class="post-content">
    <h2 id="section-one">Section One</h2>
    <p><a href="#section-one">jump</a>
    <a href="/">home</a>
    <a href="https://docs.example.com/ref">external ref</a></p>
  </div>
</article>
</body></html>`

const builtIndexPage = `<!DOCTYPE html>
<html><head><title>Blog</title></head>
<body>
<ul class="post-list">
  <li><a class="post-link" href="/a-post/">A Post</a></li>
</ul>
</body></html>`

func buildTestSite(t *testing.T) (string, []*models.Post) {
	t.Helper()
	outDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(outDir, "a-post"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.html"), []byte(builtIndexPage), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "a-post", "index.html"), []byte(builtPostPage), 0644); err != nil {
		t.Fatal(err)
	}

	posts := []*models.Post{{
		Slug:     "a-post",
		Markdown: "## Section One\n\n```python\nprint(\"ok\")\n```\n",
	}}
	return outDir, posts
}

func testChecker(outDir string, dispatcher *fetch.Dispatcher) *Checker {
	return NewChecker(
		config.SiteConfig{BaseURL: "http://localhost:8080", OutputDir: outDir},
		config.CheckConfig{
			Concurrency:       4,
			PerHostRPS:        100,
			PerHostBurst:      100,
			Timeout:           5 * time.Second,
			DuplicateDistance: 6,
		},
		dispatcher,
		cache.New(100, time.Hour),
	)
}

func TestRun_InternalOnly(t *testing.T) {
	outDir, posts := buildTestSite(t)
	checker := testChecker(outDir, nil)

	report, err := checker.Run(context.Background(), posts, RunOptions{External: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Success {
		t.Errorf("expected success, report: broken=%d badBlocks=%d structure=%+v",
			report.BrokenLinks, report.BadCodeBlocks, report.Structure)
	}
	if report.BrokenLinks != 0 {
		for _, l := range report.Links {
			if l.Status == models.LinkBroken {
				t.Errorf("broken link %s on %s: %s", l.URL, l.Page, l.Reason)
			}
		}
	}

	// The external link must be reported as skipped, not silently dropped.
	var skipped bool
	for _, l := range report.Links {
		if l.URL == "https://docs.example.com/ref" && l.Status == models.LinkSkipped {
			skipped = true
		}
	}
	if !skipped {
		t.Error("external link should be reported as skipped when probing is disabled")
	}

	if len(report.CodeBlocks) != 1 || !report.CodeBlocks[0].OK {
		t.Errorf("code blocks: %+v", report.CodeBlocks)
	}
}

func TestRun_ExternalProbing(t *testing.T) {
	outDir, posts := buildTestSite(t)

	engine := &stubEngine{
		name:     "stub",
		statuses: map[string]int{"https://docs.example.com/ref": 404},
	}
	dispatcher := fetch.NewDispatcher(
		[]fetch.Engine{engine},
		[]time.Duration{0},
		fetch.NewDomainMemory(time.Hour),
	)
	checker := testChecker(outDir, dispatcher)

	report, err := checker.Run(context.Background(), posts, RunOptions{External: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("expected failure: the external link 404s")
	}
	if report.BrokenLinks != 1 {
		t.Errorf("BrokenLinks = %d, want 1", report.BrokenLinks)
	}
}

func TestRun_MissingPageFailsStructure(t *testing.T) {
	outDir, posts := buildTestSite(t)
	// Remove the rendered post page but keep the post itself.
	if err := os.RemoveAll(filepath.Join(outDir, "a-post")); err != nil {
		t.Fatal(err)
	}

	checker := testChecker(outDir, nil)
	report, err := checker.Run(context.Background(), posts, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Success {
		t.Error("expected failure when a post page was not built")
	}
}

func TestRun_BrokenFragment(t *testing.T) {
	outDir, posts := buildTestSite(t)

	broken := []byte(`<!DOCTYPE html>
<html><head><title>A Post | Blog</title></head>
<body><article class="post"><h1 class="post-title">A Post</h1>
<time datetime="2026-01-15">x</time>
<div class="post-content"><a href="#no-such-id">dead jump</a></div>
</article></body></html>`)
	if err := os.WriteFile(filepath.Join(outDir, "a-post", "index.html"), broken, 0644); err != nil {
		t.Fatal(err)
	}

	checker := testChecker(outDir, nil)
	report, err := checker.Run(context.Background(), posts, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.BrokenLinks != 1 {
		t.Errorf("BrokenLinks = %d, want 1", report.BrokenLinks)
	}
}

func TestRun_InvalidBaseURL(t *testing.T) {
	checker := NewChecker(
		config.SiteConfig{BaseURL: "http://bad url::"},
		config.CheckConfig{},
		nil,
		cache.New(10, time.Hour),
	)
	if _, err := checker.Run(context.Background(), nil, RunOptions{}); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}
