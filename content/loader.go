package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kxue43/tech-blog/models"
)

// rePostFile matches Jekyll-style post filenames: 2023-04-02-some-slug.md
var rePostFile = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-([a-z0-9][a-z0-9-]*)\.(md|markdown)$`)

// LoadOptions controls post discovery.
type LoadOptions struct {
	// IncludeDrafts loads posts marked draft: true.
	IncludeDrafts bool
}

// Load walks dir for Markdown post sources, parses each one, and returns
// the posts sorted newest-first.
//
// Filename convention: YYYY-MM-DD-slug.md. The date in the front matter,
// when present, overrides the filename date. Files that do not match the
// convention are ignored with a warning so stray files (README, notes)
// never break the build.
func Load(dir string, opts LoadOptions) ([]*models.Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content: read posts dir %s: %w", dir, err)
	}

	seen := make(map[string]string) // slug -> source path
	var posts []*models.Post

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		m := rePostFile.FindStringSubmatch(name)
		if m == nil {
			if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown") {
				slog.Warn("content: ignoring post with unconventional filename", "file", name)
			}
			continue
		}

		path := filepath.Join(dir, name)
		post, err := loadOne(path, m[1], m[2])
		if err != nil {
			return nil, fmt.Errorf("content: %s: %w", name, err)
		}

		if post.FrontMatter.Draft && !opts.IncludeDrafts {
			slog.Debug("content: skipping draft", "slug", post.Slug)
			continue
		}

		if prev, dup := seen[post.Slug]; dup {
			return nil, models.NewBuildError(
				models.ErrCodeFrontMatter,
				fmt.Sprintf("duplicate slug %q in %s and %s", post.Slug, prev, path),
				nil,
			)
		}
		seen[post.Slug] = path
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Published.Equal(posts[j].Published) {
			return posts[i].Slug < posts[j].Slug
		}
		return posts[i].Published.After(posts[j].Published)
	})

	return posts, nil
}

// loadOne reads and parses a single post source file.
func loadOne(path, fileDate, slug string) (*models.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	fm, body, err := ParseFrontMatter(string(raw))
	if err != nil {
		return nil, err
	}

	published, err := resolveDate(fm.Date, fileDate)
	if err != nil {
		return nil, err
	}

	return &models.Post{
		Slug:        slug,
		SourcePath:  path,
		FrontMatter: fm,
		Published:   published,
		Markdown:    body,
	}, nil
}

// resolveDate picks the front matter date over the filename date.
// Accepted front matter formats: RFC3339 or plain 2006-01-02.
func resolveDate(metaDate, fileDate string) (time.Time, error) {
	candidate := metaDate
	if candidate == "" {
		candidate = fileDate
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05 -0700", "2006-01-02"} {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.NewBuildError(
		models.ErrCodeFrontMatter,
		fmt.Sprintf("unparsable date %q", candidate),
		nil,
	)
}
