package render

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"

	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/models"
)

//go:embed templates/*.html templates/main.css
var defaultTemplates embed.FS

// Renderer turns parsed posts into complete HTML pages.
// It is safe for concurrent use once constructed.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
	site config.SiteConfig
}

// NewRenderer parses the page layouts and prepares the Markdown renderer.
// When site.TemplatesDir is set, *.html files there replace the embedded
// defaults; otherwise the defaults ship inside the binary.
func NewRenderer(site config.SiteConfig) (*Renderer, error) {
	var tmpl *template.Template
	var err error

	if site.TemplatesDir != "" {
		tmpl, err = template.ParseGlob(filepath.Join(site.TemplatesDir, "*.html"))
		if err != nil {
			return nil, models.NewBuildError(
				models.ErrCodeRender,
				"failed to parse templates from "+site.TemplatesDir,
				err,
			)
		}
	} else {
		tmpl, err = template.ParseFS(defaultTemplates, "templates/*.html")
		if err != nil {
			return nil, models.NewBuildError(models.ErrCodeRender, "failed to parse embedded templates", err)
		}
	}

	for _, name := range []string{"post.html", "index.html"} {
		if tmpl.Lookup(name) == nil {
			return nil, models.NewBuildError(
				models.ErrCodeRender,
				fmt.Sprintf("layout %s is missing", name),
				nil,
			)
		}
	}

	return &Renderer{
		md:   newMarkdown(),
		tmpl: tmpl,
		site: site,
	}, nil
}

// postPage is the data passed to the post layout.
type postPage struct {
	Site    config.SiteConfig
	Post    *models.Post
	Content template.HTML
	Year    int
}

// indexPage is the data passed to the index layout.
type indexPage struct {
	Site  config.SiteConfig
	Posts []*models.Post
	Year  int
}

// Stylesheet returns the default stylesheet shipped with the layouts.
func Stylesheet() ([]byte, error) {
	return defaultTemplates.ReadFile("templates/main.css")
}

// stylesheetFor returns the stylesheet to write into the built site:
// an override from TemplatesDir when present, the embedded one otherwise.
func (r *Renderer) stylesheetFor() ([]byte, error) {
	if r.site.TemplatesDir != "" {
		override := filepath.Join(r.site.TemplatesDir, "main.css")
		if css, err := os.ReadFile(override); err == nil {
			return css, nil
		}
	}
	return Stylesheet()
}
