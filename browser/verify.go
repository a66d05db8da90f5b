package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kxue43/tech-blog/models"
)

// VerifyResult is the outcome of a render smoke check on one built page.
type VerifyResult struct {
	URL     string `json:"url"`
	OK      bool   `json:"ok"`
	Title   string `json:"title,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Elapsed int64  `json:"elapsed_ms"`
}

// VerifyPage opens a built page in a real tab and confirms it renders:
// the document must have a non-empty title and an <article> element must
// be present after the DOM settles. This is the last line of defence
// against a template change that type-checks but produces a blank page.
func (b *Browser) VerifyPage(ctx context.Context, pageURL string) (*VerifyResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	b.activePages.Add(1)
	defer b.activePages.Add(-1)

	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewBuildError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}
	defer func() {
		_ = page.Navigate("about:blank")
		b.pagePool.Put(page)
	}()

	p := page.Context(ctx)
	if err := p.Navigate(pageURL); err != nil {
		return nil, categorizeError(err, "navigation to built page failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		return nil, categorizeError(err, "built page never settled")
	}

	result := &VerifyResult{URL: pageURL}
	result.Title = evalStringOrEmpty(p, `() => document.title`)

	hasArticle := false
	if res, evalErr := p.Eval(`() => document.querySelector("article") !== null`); evalErr == nil {
		hasArticle = res.Value.Bool()
	}

	switch {
	case result.Title == "":
		result.Reason = "document has no title"
	case !hasArticle:
		result.Reason = "no <article> element rendered"
	default:
		result.OK = true
	}

	result.Elapsed = time.Since(start).Milliseconds()
	if !result.OK {
		return result, fmt.Errorf("render check failed for %s: %s", pageURL, result.Reason)
	}
	return result, nil
}
