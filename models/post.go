package models

import "time"

// FrontMatter is the YAML metadata block at the top of every post source.
type FrontMatter struct {
	// Layout names the template used to render the post.
	Layout string `yaml:"layout"`

	// Title is the post headline. Required.
	Title string `yaml:"title"`

	// Date is the publication date. Overrides the filename date when set.
	Date string `yaml:"date"`

	// Categories groups the post on the index page.
	Categories []string `yaml:"categories"`

	// Description is rendered into the page's meta description.
	Description string `yaml:"description"`

	// Draft excludes the post from the build unless drafts are included.
	Draft bool `yaml:"draft"`
}

// Post is a fully parsed post source, before and after rendering.
type Post struct {
	// Slug is the URL path segment, derived from the source filename.
	Slug string `json:"slug"`

	// SourcePath is the Markdown file the post was loaded from.
	SourcePath string `json:"source_path"`

	// FrontMatter is the parsed metadata block.
	FrontMatter FrontMatter `json:"front_matter"`

	// Published is the resolved publication date.
	Published time.Time `json:"published"`

	// Markdown is the post body with the front matter stripped.
	Markdown string `json:"-"`

	// HTML is the rendered body fragment; empty until the post is built.
	HTML string `json:"-"`
}

// Permalink returns the post's path under the site root.
func (p *Post) Permalink() string {
	return "/" + p.Slug + "/"
}

// CodeBlock is a fenced code block extracted from a post body.
type CodeBlock struct {
	// Language is the info-string language tag of the fence.
	Language string `json:"language"`

	// Line is the 1-based line in the Markdown source where the fence opens.
	Line int `json:"line"`

	// Code is the literal block content.
	Code string `json:"-"`
}
