// Package importer drafts a new post from an existing web page: fetch,
// extract the main content, convert it to Markdown, and write it into the
// posts directory as a draft for hand editing.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	nurl "net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"

	"github.com/kxue43/tech-blog/fetch"
	"github.com/kxue43/tech-blog/models"
)

// minContentLength is the minimum extracted text length for readability
// output to be considered valid.
const minContentLength = 50

// Importer turns remote pages into draft posts.
type Importer struct {
	dispatcher *fetch.Dispatcher
	conv       *converter.Converter
	postsDir   string
}

// New creates an Importer writing drafts into postsDir.
func New(dispatcher *fetch.Dispatcher, postsDir string) *Importer {
	return &Importer{
		dispatcher: dispatcher,
		conv:       newMarkdownConverter(),
		postsDir:   postsDir,
	}
}

// newMarkdownConverter creates a reusable, goroutine-safe Converter:
//
//   - base plugin: strips script, style, iframe, noscript, head and meta,
//     which are noise in a draft.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: preserves table structure with minimal cell padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// Import fetches req.URL, extracts its main content, and writes a draft
// post. The draft keeps draft: true so it never reaches the build until
// reviewed.
func (im *Importer) Import(ctx context.Context, req *models.ImportRequest) (*models.ImportResponse, error) {
	if im.dispatcher == nil {
		return nil, models.NewBuildError(models.ErrCodeImport, "no fetch engines configured", nil)
	}

	parsedURL, err := nurl.Parse(req.URL)
	if err != nil {
		return nil, models.NewBuildError(models.ErrCodeInvalidInput, "invalid URL", err)
	}

	res, err := im.dispatcher.Dispatch(ctx, &fetch.Request{
		URL:      req.URL,
		Timeout:  time.Duration(req.Timeout) * time.Second,
		WantHTML: true,
	})
	if err != nil {
		return nil, models.NewBuildError(models.ErrCodeImport, "fetch failed", err)
	}
	if res.StatusCode >= 400 {
		return nil, models.NewBuildError(
			models.ErrCodeImport,
			fmt.Sprintf("page answered HTTP %d", res.StatusCode),
			nil,
		)
	}

	article, err := readability.FromReader(strings.NewReader(res.HTML), parsedURL)
	if err != nil {
		return nil, models.NewBuildError(models.ErrCodeImport, "content extraction failed", err)
	}
	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		return nil, models.NewBuildError(models.ErrCodeImport, "page has no extractable main content", nil)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = strings.TrimSpace(res.Title)
	}
	if title == "" {
		title = parsedURL.Host
	}

	markdown, err := im.conv.ConvertString(article.Content, converter.WithDomain(req.URL))
	if err != nil {
		return nil, models.NewBuildError(models.ErrCodeImport, "markdown conversion failed", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, models.NewBuildError(models.ErrCodeImport, "could not derive a slug from the page title", nil)
	}

	now := time.Now()
	path := filepath.Join(im.postsDir, fmt.Sprintf("%s-%s.md", now.Format("2006-01-02"), slug))
	if _, statErr := os.Stat(path); statErr == nil {
		return nil, models.NewBuildError(
			models.ErrCodeImport,
			"a post already exists at "+path,
			nil,
		)
	}

	draft := renderDraft(title, article.Excerpt, req.URL, req.Categories, now, markdown)
	if err := os.WriteFile(path, []byte(draft), 0o644); err != nil {
		return nil, models.NewBuildError(models.ErrCodeImport, "write draft", err)
	}

	slog.Info("draft imported",
		"url", req.URL,
		"slug", slug,
		"engine", res.EngineName,
		"path", path,
	)
	return &models.ImportResponse{
		Success: true,
		Slug:    slug,
		Path:    path,
		Title:   title,
		Engine:  res.EngineName,
	}, nil
}

// renderDraft assembles the front matter block and imported body.
func renderDraft(title, description, sourceURL string, categories []string, now time.Time, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("layout: post\n")
	fmt.Fprintf(&b, "title: %q\n", title)
	fmt.Fprintf(&b, "date: %s\n", now.Format("2006-01-02"))
	if len(categories) > 0 {
		fmt.Fprintf(&b, "categories: [%s]\n", strings.Join(categories, ", "))
	}
	if description != "" {
		fmt.Fprintf(&b, "description: %q\n", strings.TrimSpace(description))
	}
	b.WriteString("draft: true\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "> Imported from <%s>. Review before publishing.\n\n", sourceURL)
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String()
}

var reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title and collapses every non-alphanumeric run
// into a single dash.
func Slugify(title string) string {
	slug := reNonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
