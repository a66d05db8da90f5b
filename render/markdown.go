package render

import (
	"bytes"

	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/kxue43/tech-blog/models"
)

// newMarkdown creates a reusable, goroutine-safe Markdown renderer:
//
//   - GFM extension: tables, strikethrough, autolinks, task lists — the
//     dialect the posts are written in.
//   - highlighting extension: chroma-backed syntax highlighting of fenced
//     code blocks, so the same lexers validate and colour the snippets.
//   - auto heading IDs: every heading gets an id, which is what makes
//     #fragment links inside posts resolvable.
//   - WithUnsafe: posts are first-party content, inline HTML is allowed.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// RenderMarkdown converts a post body to an HTML fragment and stores it on
// the post.
func (r *Renderer) RenderMarkdown(post *models.Post) error {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(post.Markdown), &buf); err != nil {
		return models.NewBuildError(
			models.ErrCodeRender,
			"markdown conversion failed for "+post.Slug,
			err,
		)
	}
	post.HTML = buf.String()
	return nil
}
