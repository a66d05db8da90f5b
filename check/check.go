// Package check enforces the documentation-quality properties of the
// built site: every hyperlink resolves, every fenced code block is
// well-formed in its declared language, and every rendered page matches
// the layout's structural contract.
package check

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kxue43/tech-blog/cache"
	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/fetch"
	"github.com/kxue43/tech-blog/models"
)

// Checker runs the full validation suite against a built site.
type Checker struct {
	site       config.SiteConfig
	cfg        config.CheckConfig
	dispatcher *fetch.Dispatcher
	cache      *cache.Cache
}

// NewChecker creates a Checker. dispatcher may be nil, in which case
// external links are reported as skipped instead of probed.
func NewChecker(site config.SiteConfig, cfg config.CheckConfig, dispatcher *fetch.Dispatcher, cc *cache.Cache) *Checker {
	return &Checker{
		site:       site,
		cfg:        cfg,
		dispatcher: dispatcher,
		cache:      cc,
	}
}

// RunOptions tunes a single validation run.
type RunOptions struct {
	// External enables network probing of external links.
	External bool

	// Timeout overrides the configured per-probe deadline when positive.
	Timeout time.Duration

	// CacheMaxAge is the probe cache freshness window; 0 disables lookups.
	CacheMaxAge time.Duration
}

// Run validates the posts against the built output in site.OutputDir.
// The site must have been built first; a missing rendered page is itself
// a failure.
func (c *Checker) Run(ctx context.Context, posts []*models.Post, opts RunOptions) (*models.ValidateReport, error) {
	start := time.Now()
	report := &models.ValidateReport{Posts: len(posts)}

	base, err := url.Parse(c.site.BaseURL)
	if err != nil {
		return nil, models.NewBuildError(models.ErrCodeInvalidInput, "invalid site base URL", err)
	}

	// ── 1. Read rendered pages, collect links/ids, check structure ──
	type renderedPage struct {
		permalink string
		links     []pageLink
		ids       map[string]struct{}
	}

	pages := make([]renderedPage, 0, len(posts)+1)
	pageIDs := make(map[string]map[string]struct{})

	loadPage := func(permalink, relPath string, selectors []namedSelector) error {
		pageHTML, readErr := os.ReadFile(filepath.Join(c.site.OutputDir, relPath))
		if readErr != nil {
			report.Structure = append(report.Structure, models.StructureResult{
				Page:    permalink,
				OK:      false,
				Missing: []string{"(page not built: " + readErr.Error() + ")"},
			})
			return nil
		}
		links, ids, parseErr := collectLinks(string(pageHTML), permalink, base)
		if parseErr != nil {
			return parseErr
		}
		pages = append(pages, renderedPage{permalink: permalink, links: links, ids: ids})
		pageIDs[permalink] = ids
		report.Structure = append(report.Structure, checkStructure(string(pageHTML), permalink, selectors))
		return nil
	}

	if err := loadPage("/", "index.html", indexSelectors); err != nil {
		return nil, err
	}
	for _, post := range posts {
		if err := loadPage(post.Permalink(), filepath.Join(post.Slug, "index.html"), postSelectors); err != nil {
			return nil, err
		}
	}

	// ── 2. Internal links against the output tree ───────────────────
	var external []pageLink
	for _, page := range pages {
		for _, link := range page.links {
			if link.href == nil || isInternal(link, base) || strings.HasPrefix(link.raw, "#") {
				report.Links = append(report.Links, checkInternalLink(link, c.site.OutputDir, page.ids, pageIDs))
				continue
			}
			external = append(external, link)
		}
	}

	// ── 3. External links ───────────────────────────────────────────
	probeStart := time.Now()
	switch {
	case !opts.External:
		for _, link := range external {
			report.Links = append(report.Links, models.LinkResult{
				URL:    link.raw,
				Page:   link.page,
				Status: models.LinkSkipped,
				Reason: "external probing disabled",
			})
		}
	case c.dispatcher == nil:
		for _, link := range external {
			report.Links = append(report.Links, models.LinkResult{
				URL:    link.raw,
				Page:   link.page,
				Status: models.LinkSkipped,
				Reason: "no probe engines configured",
			})
		}
	default:
		timeout := c.cfg.Timeout
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		prober := newExternalProber(c.dispatcher, c.cache, proberConfig{
			Concurrency:  c.cfg.Concurrency,
			Timeout:      timeout,
			PerHostRPS:   c.cfg.PerHostRPS,
			PerHostBurst: c.cfg.PerHostBurst,
			SkipHosts:    c.cfg.SkipHosts,
			CacheMaxAge:  opts.CacheMaxAge,
		})
		report.Links = append(report.Links, prober.probeAll(ctx, external)...)
	}
	probeMs := time.Since(probeStart).Milliseconds()

	// ── 4. Code blocks from the Markdown sources ────────────────────
	for _, post := range posts {
		for _, block := range ExtractCodeBlocks(post.Markdown) {
			report.CodeBlocks = append(report.CodeBlocks, ValidateCodeBlock(post.Permalink(), block))
		}
	}

	// ── 5. Near-duplicate posts ─────────────────────────────────────
	report.Duplicates = findDuplicates(posts, c.cfg.DuplicateDistance)

	// ── 6. Totals ───────────────────────────────────────────────────
	for _, l := range report.Links {
		if l.Status == models.LinkBroken {
			report.BrokenLinks++
		}
	}
	for _, b := range report.CodeBlocks {
		if !b.OK {
			report.BadCodeBlocks++
		}
	}
	structureOK := true
	for _, s := range report.Structure {
		if !s.OK {
			structureOK = false
		}
	}

	report.Success = report.BrokenLinks == 0 &&
		report.BadCodeBlocks == 0 &&
		structureOK &&
		len(report.Duplicates) == 0
	report.Timing = models.TimingInfo{
		TotalMs: time.Since(start).Milliseconds(),
		ProbeMs: probeMs,
	}

	slog.Info("validation finished",
		"posts", report.Posts,
		"links", len(report.Links),
		"broken", report.BrokenLinks,
		"badCodeBlocks", report.BadCodeBlocks,
		"success", report.Success,
	)
	return report, nil
}
