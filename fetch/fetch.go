// Package fetch retrieves external pages through a set of escalating
// engines: plain HTTP with a Chrome TLS fingerprint first, then a headless
// browser, then a stealth browser. The dispatcher races the engines with
// staged delays and remembers which one worked per domain.
package fetch

import (
	"context"
	"time"
)

// Engine is the interface that all fetch engines implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browser", "browser-stealth").
	Name() string

	// Fetch retrieves the target for the given request.
	Fetch(ctx context.Context, req *Request) (*Result, error)
}

// Request contains everything an engine needs to fetch a target.
type Request struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration

	// WantHTML makes a non-HTML response an engine failure so the
	// dispatcher escalates. Link probes leave it false: a PDF answering
	// 200 is a perfectly resolved link.
	WantHTML bool
}

// Result is the output of a successful engine fetch.
//
// A Result with a 4xx/5xx StatusCode is still a success at this layer —
// the server answered definitively. Engines return errors only for
// conditions worth escalating over (transport failures, bot walls).
type Result struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
