package check

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/kxue43/tech-blog/cache"
	"github.com/kxue43/tech-blog/fetch"
	"github.com/kxue43/tech-blog/models"
)

// pageLink is a hyperlink found on a rendered page, resolved to an
// absolute URL where possible.
type pageLink struct {
	// href is the resolved target.
	href *url.URL
	// raw is the attribute value as written.
	raw string
	// page is the permalink of the page the link appears on.
	page string
}

// collectLinks parses a rendered page and returns its anchors plus the set
// of element ids, which internal fragment links are resolved against.
func collectLinks(pageHTML, pagePath string, base *url.URL) (links []pageLink, ids map[string]struct{}, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, nil, fmt.Errorf("check: parse %s: %w", pagePath, err)
	}

	ids = make(map[string]struct{})
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && id != "" {
			ids[id] = struct{}{}
		}
	})

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		resolved, parseErr := base.Parse(href)
		if parseErr != nil {
			resolved = nil
		}
		links = append(links, pageLink{href: resolved, raw: href, page: pagePath})
	})

	return links, ids, nil
}

// isInternal reports whether the link targets the site itself.
func isInternal(link pageLink, base *url.URL) bool {
	if link.href == nil {
		return false
	}
	return strings.EqualFold(link.href.Host, base.Host)
}

// checkInternalLink resolves a site-local link against the built output
// tree and, for fragments, against the target page's element ids.
// pageIDs maps a permalink path ("/slug/") to that page's id set.
func checkInternalLink(link pageLink, outDir string, selfIDs map[string]struct{}, pageIDs map[string]map[string]struct{}) models.LinkResult {
	result := models.LinkResult{
		URL:    link.raw,
		Page:   link.page,
		Status: models.LinkOK,
	}

	// Pure fragment: resolve against the page it appears on.
	if strings.HasPrefix(link.raw, "#") {
		frag := strings.TrimPrefix(link.raw, "#")
		if _, ok := selfIDs[frag]; !ok {
			result.Status = models.LinkBroken
			result.Reason = fmt.Sprintf("no element with id %q on page", frag)
		}
		return result
	}

	if link.href == nil {
		result.Status = models.LinkBroken
		result.Reason = "unparsable URL"
		return result
	}

	p := link.href.Path
	if p == "" {
		p = "/"
	}

	// Map the URL path onto the output tree: directories are served as
	// their index.html.
	rel := strings.TrimPrefix(p, "/")
	candidates := []string{
		filepath.Join(outDir, filepath.FromSlash(rel)),
		filepath.Join(outDir, filepath.FromSlash(rel), "index.html"),
	}
	found := false
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = true
			break
		}
	}
	if !found {
		result.Status = models.LinkBroken
		result.Reason = "no file in build output for " + p
		return result
	}

	if frag := link.href.Fragment; frag != "" {
		key := p
		if !strings.HasSuffix(key, "/") {
			key += "/"
		}
		if ids, ok := pageIDs[key]; ok {
			if _, present := ids[frag]; !present {
				result.Status = models.LinkBroken
				result.Reason = fmt.Sprintf("no element with id %q on %s", frag, p)
			}
		}
	}

	return result
}

// externalProber checks external links with bounded concurrency, a
// per-host token bucket, and the probe cache.
type externalProber struct {
	dispatcher  *fetch.Dispatcher
	cache       *cache.Cache
	concurrency int
	timeout     time.Duration
	maxAge      time.Duration
	skipHosts   map[string]struct{}

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	hostRPS  float64
	burst    int
}

func newExternalProber(dispatcher *fetch.Dispatcher, cc *cache.Cache, cfg proberConfig) *externalProber {
	skip := make(map[string]struct{}, len(cfg.SkipHosts))
	for _, h := range cfg.SkipHosts {
		skip[strings.ToLower(h)] = struct{}{}
	}
	return &externalProber{
		dispatcher:  dispatcher,
		cache:       cc,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
		maxAge:      cfg.CacheMaxAge,
		skipHosts:   skip,
		limiters:    make(map[string]*rate.Limiter),
		hostRPS:     cfg.PerHostRPS,
		burst:       cfg.PerHostBurst,
	}
}

// proberConfig is the slice of CheckConfig the prober needs.
type proberConfig struct {
	Concurrency  int
	Timeout      time.Duration
	PerHostRPS   float64
	PerHostBurst int
	SkipHosts    []string
	CacheMaxAge  time.Duration
}

// limiterFor returns the token bucket for a host, creating it on first use.
func (pb *externalProber) limiterFor(host string) *rate.Limiter {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	lim, ok := pb.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(pb.hostRPS), pb.burst)
		pb.limiters[host] = lim
	}
	return lim
}

// probeAll checks every external link concurrently and returns results in
// a stable order (sorted by URL then page). The same URL often appears on
// several pages; it is probed once and the result fanned back out to every
// page it was seen on.
func (pb *externalProber) probeAll(ctx context.Context, links []pageLink) []models.LinkResult {
	type group struct {
		link  pageLink
		pages []string
	}
	var order []string
	groups := make(map[string]*group)
	for _, l := range links {
		key := l.raw
		if l.href != nil {
			key = l.href.String()
		}
		g, ok := groups[key]
		if !ok {
			g = &group{link: l}
			groups[key] = g
			order = append(order, key)
		}
		g.pages = append(g.pages, l.page)
	}

	probed := make([]models.LinkResult, len(order))
	sem := make(chan struct{}, pb.concurrency)
	var wg sync.WaitGroup
	for i, key := range order {
		wg.Add(1)
		go func(idx int, l pageLink) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			probed[idx] = pb.probeOne(ctx, l)
		}(i, groups[key].link)
	}
	wg.Wait()

	results := make([]models.LinkResult, 0, len(links))
	for i, key := range order {
		for _, page := range groups[key].pages {
			r := probed[i]
			r.Page = page
			results = append(results, r)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].URL == results[j].URL {
			return results[i].Page < results[j].Page
		}
		return results[i].URL < results[j].URL
	})
	return results
}

// probeOne checks a single external link.
func (pb *externalProber) probeOne(ctx context.Context, link pageLink) models.LinkResult {
	result := models.LinkResult{URL: link.raw, Page: link.page}

	if link.href == nil {
		result.Status = models.LinkBroken
		result.Reason = "unparsable URL"
		return result
	}
	if link.href.Scheme != "http" && link.href.Scheme != "https" {
		// mailto:, tel: and friends are not probeable.
		result.Status = models.LinkSkipped
		result.Reason = "non-http scheme " + link.href.Scheme
		return result
	}

	target := link.href.String()
	result.URL = target

	host := strings.ToLower(link.href.Hostname())
	if _, skip := pb.skipHosts[host]; skip {
		result.Status = models.LinkSkipped
		result.Reason = "host on skip list"
		return result
	}

	if cached, hit := pb.cache.Get(cache.Key(target), pb.maxAge); hit {
		cached.Page = link.page
		cached.Cached = true
		return *cached
	}

	if err := pb.limiterFor(host).Wait(ctx); err != nil {
		result.Status = models.LinkBroken
		result.Reason = "probe canceled: " + err.Error()
		return result
	}

	probeCtx, cancel := context.WithTimeout(ctx, pb.timeout)
	defer cancel()

	res, err := pb.dispatcher.Dispatch(probeCtx, &fetch.Request{
		URL:     target,
		Timeout: pb.timeout,
	})
	if err != nil {
		result.Status = models.LinkBroken
		result.Reason = err.Error()
		pb.cache.Set(cache.Key(target), &result)
		return result
	}

	result.StatusCode = res.StatusCode
	result.Engine = res.EngineName
	if res.StatusCode >= 400 {
		result.Status = models.LinkBroken
		result.Reason = fmt.Sprintf("HTTP %d", res.StatusCode)
	} else {
		result.Status = models.LinkOK
	}
	pb.cache.Set(cache.Key(target), &result)
	return result
}
