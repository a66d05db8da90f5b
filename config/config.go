package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Check     CheckConfig
	Browser   BrowserConfig
	Probe     ProbeConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the preview/validation HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// SiteConfig describes the blog itself and where its files live.
type SiteConfig struct {
	// Title is the blog title rendered into every page.
	Title string // default: "kxue43 tech blog"

	// BaseURL is the canonical site root, used to classify links as internal.
	BaseURL string // default: "http://localhost:8080"

	// Author is rendered into page metadata.
	Author string

	// PostsDir is the directory containing Markdown post sources.
	PostsDir string // default: "posts"

	// TemplatesDir optionally overrides the embedded layouts.
	TemplatesDir string

	// OutputDir is where the rendered site is written.
	OutputDir string // default: "_site"

	// IncludeDrafts renders posts marked draft: true.
	IncludeDrafts bool // default: false
}

// CheckConfig controls the documentation validator.
type CheckConfig struct {
	// External toggles probing of external hyperlinks over the network.
	External bool // default: true

	// Concurrency is the number of simultaneous external probes.
	Concurrency int // default: 8

	// PerHostRPS is the sustained probe rate per remote host.
	PerHostRPS float64 // default: 2

	// PerHostBurst is the probe burst size per remote host.
	PerHostBurst int // default: 4

	// Timeout is the deadline for a single external probe.
	Timeout time.Duration // default: 20s

	// DuplicateDistance is the maximum Hamming distance between post
	// fingerprints before two posts are reported as near-duplicates.
	DuplicateDistance int // default: 6

	// SkipHosts lists hosts that are never probed.
	SkipHosts []string
}

// BrowserConfig controls the rod browser used by the escalating prober
// and the render smoke check.
type BrowserConfig struct {
	// Enabled toggles the browser engines entirely. When false the link
	// prober only uses the HTTP engine.
	Enabled bool // default: false

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// ProbeConfig controls the multi-engine escalation for external links.
type ProbeConfig struct {
	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 2s, 5s]

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 8s

	// MemoryTTL is how long a per-domain engine preference is remembered.
	MemoryTTL time.Duration // default: 24h
}

// AuthConfig controls API key authentication on the mutating endpoints.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting on the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the external link probe result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached probe results.
	MaxEntries int // default: 2000

	// MaxAge is how long a cached probe result stays valid.
	MaxAge time.Duration // default: 1h
}

// WebhookConfig controls signing of outgoing webhook events.
type WebhookConfig struct {
	// Secret, when set, is used to HMAC-sign webhook payloads.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("BLOG_HOST", "0.0.0.0"),
			Port: envIntOr("BLOG_PORT", 8080),
			Mode: envOr("BLOG_MODE", "release"),
		},
		Site: SiteConfig{
			Title:         envOr("BLOG_TITLE", "kxue43 tech blog"),
			BaseURL:       envOr("BLOG_BASE_URL", "http://localhost:8080"),
			Author:        envOr("BLOG_AUTHOR", ""),
			PostsDir:      envOr("BLOG_POSTS_DIR", "posts"),
			TemplatesDir:  os.Getenv("BLOG_TEMPLATES_DIR"),
			OutputDir:     envOr("BLOG_OUTPUT_DIR", "_site"),
			IncludeDrafts: envBoolOr("BLOG_INCLUDE_DRAFTS", false),
		},
		Check: CheckConfig{
			External:          envBoolOr("BLOG_CHECK_EXTERNAL", true),
			Concurrency:       envIntOr("BLOG_CHECK_CONCURRENCY", 8),
			PerHostRPS:        envFloatOr("BLOG_CHECK_HOST_RPS", 2.0),
			PerHostBurst:      envIntOr("BLOG_CHECK_HOST_BURST", 4),
			Timeout:           envDurationOr("BLOG_CHECK_TIMEOUT", 20*time.Second),
			DuplicateDistance: envIntOr("BLOG_CHECK_DUP_DISTANCE", 6),
			SkipHosts:         envSliceOr("BLOG_CHECK_SKIP_HOSTS", nil),
		},
		Browser: BrowserConfig{
			Enabled:    envBoolOr("BLOG_BROWSER_ENABLED", false),
			Headless:   envBoolOr("BLOG_HEADLESS", true),
			MaxPages:   envIntOr("BLOG_MAX_PAGES", 4),
			NoSandbox:  envBoolOr("BLOG_NO_SANDBOX", false),
			BrowserBin: os.Getenv("BLOG_BROWSER_BIN"),
		},
		Probe: ProbeConfig{
			EscalationDelays: envDurationSliceOr("BLOG_ESCALATION_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
			HTTPTimeout:      envDurationOr("BLOG_HTTP_TIMEOUT", 8*time.Second),
			MemoryTTL:        envDurationOr("BLOG_PROBE_MEMORY_TTL", 24*time.Hour),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("BLOG_AUTH_ENABLED", true),
			APIKeys: envSliceOr("BLOG_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("BLOG_RATE_RPS", 5.0),
			Burst:             envIntOr("BLOG_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("BLOG_CACHE_MAX_ENTRIES", 2000),
			MaxAge:     envDurationOr("BLOG_CACHE_MAX_AGE", time.Hour),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("BLOG_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("BLOG_LOG_LEVEL", "info"),
			Format: envOr("BLOG_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
