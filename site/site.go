// Package site ties content loading, rendering, and validation together
// behind one concurrency-safe facade used by the API handlers and the CLI.
package site

import (
	"context"
	"sync"
	"time"

	"github.com/kxue43/tech-blog/check"
	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/content"
	"github.com/kxue43/tech-blog/models"
	"github.com/kxue43/tech-blog/render"
)

// Site holds the loaded posts and the machinery to rebuild and validate
// the static output. It is safe for concurrent use.
type Site struct {
	cfg      config.SiteConfig
	renderer *render.Renderer
	checker  *check.Checker

	mu    sync.RWMutex
	posts []*models.Post
}

// New creates a Site. checker may be nil when validation is not needed
// (e.g. a pure build run).
func New(cfg config.SiteConfig, renderer *render.Renderer, checker *check.Checker) *Site {
	return &Site{
		cfg:      cfg,
		renderer: renderer,
		checker:  checker,
	}
}

// Build reloads the posts from disk and writes the rendered site into the
// output directory.
func (s *Site) Build() (*models.BuildReport, error) {
	start := time.Now()

	posts, err := content.Load(s.cfg.PostsDir, content.LoadOptions{
		IncludeDrafts: s.cfg.IncludeDrafts,
	})
	if err != nil {
		return nil, err
	}

	report, err := s.renderer.BuildSite(posts, s.cfg.OutputDir)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()

	report.Timing.TotalMs = time.Since(start).Milliseconds()
	return report, nil
}

// Posts returns the currently loaded posts, newest first.
func (s *Site) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Post returns the post with the given slug, or nil.
func (s *Site) Post(slug string) *models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

// Validate runs the documentation checks against the current build.
func (s *Site) Validate(ctx context.Context, opts check.RunOptions) (*models.ValidateReport, error) {
	if s.checker == nil {
		return nil, models.NewBuildError(models.ErrCodeInternal, "validator not configured", nil)
	}
	return s.checker.Run(ctx, s.Posts(), opts)
}

// OutputDir exposes where the built site lives, for static serving.
func (s *Site) OutputDir() string {
	return s.cfg.OutputDir
}
