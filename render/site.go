package render

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kxue43/tech-blog/models"
)

// PostPage renders one post into a complete HTML document.
// The post's Markdown is converted first if it hasn't been already.
func (r *Renderer) PostPage(post *models.Post) ([]byte, error) {
	if post.HTML == "" {
		if err := r.RenderMarkdown(post); err != nil {
			return nil, err
		}
	}

	layout := post.FrontMatter.Layout + ".html"
	if r.tmpl.Lookup(layout) == nil {
		return nil, models.NewBuildError(
			models.ErrCodeRender,
			fmt.Sprintf("no template for layout %q (post %s)", post.FrontMatter.Layout, post.Slug),
			nil,
		)
	}

	var buf bytes.Buffer
	data := postPage{
		Site: r.site,
		Post: post,
		// The fragment came out of our own Markdown renderer.
		Content: template.HTML(post.HTML),
		Year:    time.Now().Year(),
	}
	if err := r.tmpl.ExecuteTemplate(&buf, layout, data); err != nil {
		return nil, models.NewBuildError(
			models.ErrCodeRender,
			"post layout failed for "+post.Slug,
			err,
		)
	}
	return buf.Bytes(), nil
}

// IndexPage renders the front page listing all posts.
func (r *Renderer) IndexPage(posts []*models.Post) ([]byte, error) {
	var buf bytes.Buffer
	data := indexPage{
		Site:  r.site,
		Posts: posts,
		Year:  time.Now().Year(),
	}
	if err := r.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return nil, models.NewBuildError(models.ErrCodeRender, "index layout failed", err)
	}
	return buf.Bytes(), nil
}

// BuildSite renders every post plus the index into outDir:
//
//	outDir/index.html
//	outDir/<slug>/index.html
//	outDir/assets/main.css
//
// Existing files are overwritten; other files in outDir are left alone.
func (r *Renderer) BuildSite(posts []*models.Post, outDir string) (*models.BuildReport, error) {
	start := time.Now()
	report := &models.BuildReport{OutputDir: outDir}

	write := func(relPath string, data []byte) error {
		path := filepath.Join(outDir, relPath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return models.NewBuildError(models.ErrCodeRender, "create output dir", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return models.NewBuildError(models.ErrCodeRender, "write "+relPath, err)
		}
		report.Pages++
		report.Bytes += int64(len(data))
		return nil
	}

	for _, post := range posts {
		page, err := r.PostPage(post)
		if err != nil {
			return report, err
		}
		if err := write(filepath.Join(post.Slug, "index.html"), page); err != nil {
			return report, err
		}
		report.Posts++
	}

	index, err := r.IndexPage(posts)
	if err != nil {
		return report, err
	}
	if err := write("index.html", index); err != nil {
		return report, err
	}

	css, err := r.stylesheetFor()
	if err != nil {
		return report, models.NewBuildError(models.ErrCodeRender, "read stylesheet", err)
	}
	if err := write(filepath.Join("assets", "main.css"), css); err != nil {
		return report, err
	}

	report.Success = true
	report.Timing = models.TimingInfo{
		TotalMs:  time.Since(start).Milliseconds(),
		RenderMs: time.Since(start).Milliseconds(),
	}
	slog.Info("site built",
		"posts", report.Posts,
		"pages", report.Pages,
		"bytes", report.Bytes,
		"out", outDir,
	)
	return report, nil
}
