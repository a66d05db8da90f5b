package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kxue43/tech-blog/api"
	"github.com/kxue43/tech-blog/browser"
	"github.com/kxue43/tech-blog/cache"
	"github.com/kxue43/tech-blog/check"
	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/fetch"
	"github.com/kxue43/tech-blog/importer"
	"github.com/kxue43/tech-blog/render"
	"github.com/kxue43/tech-blog/site"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	mode := "serve"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "serve":
		runServe(cfg)
	case "build":
		runBuild(cfg)
	case "check":
		runCheck(cfg)
	default:
		fmt.Fprintf(os.Stderr, "usage: blog [serve|build|check]\n")
		os.Exit(2)
	}
}

// runBuild renders the site once and exits.
func runBuild(cfg *config.Config) {
	st, err := newSite(cfg, nil)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	report, err := st.Build()
	if err != nil {
		slog.Error("build failed", "error", err)
		os.Exit(1)
	}
	slog.Info("build finished",
		"pages", report.Pages,
		"bytes", report.Bytes,
		"output", report.OutputDir,
		"ms", report.Timing.TotalMs,
	)
}

// runCheck builds the site, runs the full validation, prints the JSON
// report to stdout, and exits non-zero when any check failed.
func runCheck(cfg *config.Config) {
	br, dispatcher := newProbeStack(cfg)
	if br != nil {
		defer br.Close()
	}

	checker := check.NewChecker(cfg.Site, cfg.Check, dispatcher, cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge))
	st, err := newSite(cfg, checker)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	if _, err := st.Build(); err != nil {
		slog.Error("build failed", "error", err)
		os.Exit(1)
	}

	report, err := st.Validate(context.Background(), check.RunOptions{
		External:    cfg.Check.External,
		Timeout:     cfg.Check.Timeout,
		CacheMaxAge: cfg.Cache.MaxAge,
	})
	if err != nil {
		slog.Error("validation failed", "error", err)
		os.Exit(1)
	}

	smokeOK := true
	if br != nil {
		smokeOK = runRenderSmoke(br, st)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		slog.Error("failed to encode report", "error", err)
		os.Exit(1)
	}
	if !report.Success || !smokeOK {
		os.Exit(1)
	}
}

// runRenderSmoke opens every built post page in a real browser tab and
// confirms it renders. Catches template changes that produce structurally
// valid but blank pages.
func runRenderSmoke(br *browser.Browser, st *site.Site) bool {
	ok := true
	for _, post := range st.Posts() {
		path, err := filepath.Abs(filepath.Join(st.OutputDir(), post.Slug, "index.html"))
		if err != nil {
			slog.Error("render smoke: resolve page path", "slug", post.Slug, "error", err)
			ok = false
			continue
		}
		result, err := br.VerifyPage(context.Background(), "file://"+filepath.ToSlash(path))
		if err != nil {
			reason := err.Error()
			if result != nil {
				reason = result.Reason
			}
			slog.Error("render smoke failed", "slug", post.Slug, "reason", reason)
			ok = false
			continue
		}
		slog.Info("render smoke passed", "slug", post.Slug, "title", result.Title, "ms", result.Elapsed)
	}
	return ok
}

// runServe builds the site, starts the API/preview server, and rebuilds
// on source changes until a shutdown signal arrives.
func runServe(cfg *config.Config) {
	slog.Info("blog starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"posts", cfg.Site.PostsDir,
	)

	br, dispatcher := newProbeStack(cfg)
	if br != nil {
		defer br.Close()
	}

	checker := check.NewChecker(cfg.Site, cfg.Check, dispatcher, cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge))
	st, err := newSite(cfg, checker)
	if err != nil {
		slog.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	if _, err := st.Build(); err != nil {
		slog.Error("initial build failed", "error", err)
		os.Exit(1)
	}

	imp := importer.New(dispatcher, cfg.Site.PostsDir)

	watcher, err := newRebuildWatcher(st, cfg.Site)
	if err != nil {
		slog.Warn("file watcher disabled", "error", err)
	} else {
		defer watcher.Close()
	}

	startTime := time.Now()
	router := api.NewRouter(st, imp, br, cfg, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	slog.Info("blog stopped")
}

// newSite wires the renderer and an optional checker into a Site.
func newSite(cfg *config.Config, checker *check.Checker) (*site.Site, error) {
	renderer, err := render.NewRenderer(cfg.Site)
	if err != nil {
		return nil, err
	}
	return site.New(cfg.Site, renderer, checker), nil
}

// newProbeStack assembles the escalating fetch dispatcher. The browser
// engines join only when enabled; the dispatcher always starts with the
// plain HTTP engine.
func newProbeStack(cfg *config.Config) (*browser.Browser, *fetch.Dispatcher) {
	engines := []fetch.Engine{fetch.NewHTTPEngine()}

	var br *browser.Browser
	if cfg.Browser.Enabled {
		var err error
		br, err = browser.New(cfg.Browser)
		if err != nil {
			slog.Warn("browser unavailable, probing over HTTP only", "error", err)
		} else {
			engines = append(engines,
				browser.NewEngine(br, false),
				browser.NewEngine(br, true),
			)
		}
	}

	memory := fetch.NewDomainMemory(cfg.Probe.MemoryTTL)
	dispatcher := fetch.NewDispatcher(engines, cfg.Probe.EscalationDelays, memory)
	slog.Info("fetch dispatcher ready",
		"engines", len(engines),
		"delays", cfg.Probe.EscalationDelays,
	)
	return br, dispatcher
}

// newRebuildWatcher rebuilds the site whenever a post or template changes.
// Editors fire bursts of events per save, so rebuilds are debounced.
func newRebuildWatcher(st *site.Site, cfg config.SiteConfig) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(cfg.PostsDir); err != nil {
		watcher.Close()
		return nil, err
	}
	if cfg.TemplatesDir != "" {
		if err := watcher.Add(cfg.TemplatesDir); err != nil {
			slog.Warn("cannot watch templates directory", "dir", cfg.TemplatesDir, "error", err)
		}
	}

	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(300*time.Millisecond, func() {
					if report, err := st.Build(); err != nil {
						slog.Error("rebuild failed", "error", err)
					} else {
						slog.Info("site rebuilt", "trigger", event.Name, "pages", report.Pages)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("file watcher error", "error", err)
			}
		}
	}()
	return watcher, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
