package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/kxue43/tech-blog/fetch"
	"github.com/kxue43/tech-blog/models"
)

// Engine adapts the Browser into a fetch.Engine tier. With stealth
// enabled it injects the stealth JS before navigation and identifies
// itself as "browser-stealth".
type Engine struct {
	browser *Browser
	stealth bool
	name    string
}

// NewEngine wraps b as a fetch engine.
func NewEngine(b *Browser, useStealth bool) *Engine {
	name := "browser"
	if useStealth {
		name = "browser-stealth"
	}
	return &Engine{browser: b, stealth: useStealth, name: name}
}

func (e *Engine) Name() string { return e.name }

// Fetch navigates a pooled tab to the target and extracts the rendered
// document.
//
// Lifecycle:
//
//  1. Timeout guard    – hard deadline on the entire operation
//  2. Acquire page     – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup   – about:blank + return to pool (leak prevention)
//  4. Stealth          – inject before navigation or it has no effect
//  5. Hijack mount     – block images/fonts/media (before navigation!)
//  6. Navigate + wait  – DOM-stable wait instead of fixed sleeps
//  7. Extract          – status via the Performance API, then HTML/title
//
// Step 3 deliberately uses the original page reference (without the
// request context) so cleanup succeeds even after the deadline fires.
func (e *Engine) Fetch(ctx context.Context, req *fetch.Request) (*fetch.Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.browser.activePages.Add(1)
	defer e.browser.activePages.Add(-1)

	page, acquireErr := e.browser.pagePool.Get(func() (*rod.Page, error) {
		return e.browser.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return nil, models.NewBuildError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		e.browser.pagePool.Put(page)
	}()

	if e.stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}.Call(page)
	}

	router := mountHijack(page)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target failed")
	}

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr)
	}

	// The Performance API exposes the navigation status code without any
	// CDP event listeners, which conflict with the hijack router on
	// newer Chromium.
	statusCode := 0
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &fetch.Result{
		HTML:       rawHTML,
		Title:      title,
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineName: e.name,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed BuildErrors so callers can
// map them to appropriate statuses.
func categorizeError(err error, msg string) *models.BuildError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewBuildError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewBuildError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewBuildError(models.ErrCodeFetch, msg, err)
	}
}
