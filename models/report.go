package models

// Link status values reported by the link check.
const (
	LinkOK      = "ok"
	LinkBroken  = "broken"
	LinkSkipped = "skipped"
)

// LinkResult is the outcome of checking a single hyperlink.
type LinkResult struct {
	// URL is the link target as written, resolved to an absolute form.
	URL string `json:"url"`

	// Page is the permalink of the page the link appears on.
	Page string `json:"page"`

	// Status is "ok", "broken", or "skipped".
	Status string `json:"status"`

	// StatusCode is the HTTP status for external links; 0 for internal.
	StatusCode int `json:"status_code,omitempty"`

	// Engine is the probe engine that produced the result
	// (e.g. "http", "browser", "browser-stealth"). Empty for internal links.
	Engine string `json:"engine,omitempty"`

	// Cached indicates the result came from the probe cache.
	Cached bool `json:"cached,omitempty"`

	// Reason describes why a link is broken or skipped.
	Reason string `json:"reason,omitempty"`
}

// CodeBlockResult is the outcome of validating one fenced code block.
type CodeBlockResult struct {
	// Page is the permalink of the post containing the block.
	Page string `json:"page"`

	// Language is the declared fence language.
	Language string `json:"language"`

	// Line is the source line where the fence opens.
	Line int `json:"line"`

	// OK is true when the block lexed cleanly in its declared language.
	OK bool `json:"ok"`

	// Reason describes the failure when OK is false.
	Reason string `json:"reason,omitempty"`
}

// StructureResult is the outcome of the template structure check on one page.
type StructureResult struct {
	// Page is the permalink of the rendered page.
	Page string `json:"page"`

	// OK is true when every required selector matched.
	OK bool `json:"ok"`

	// Missing lists the selectors that matched nothing.
	Missing []string `json:"missing,omitempty"`
}

// DuplicateResult reports a pair of posts with near-identical body text.
type DuplicateResult struct {
	PageA    string `json:"page_a"`
	PageB    string `json:"page_b"`
	Distance int    `json:"distance"`
}

// ValidateReport aggregates every documentation-quality check.
type ValidateReport struct {
	// Success is true when no check produced a failure.
	Success bool `json:"success"`

	// Posts is the number of posts examined.
	Posts int `json:"posts"`

	// Links holds one result per distinct link per page.
	Links []LinkResult `json:"links"`

	// BrokenLinks is the count of links with status "broken".
	BrokenLinks int `json:"broken_links"`

	// CodeBlocks holds one result per fenced code block.
	CodeBlocks []CodeBlockResult `json:"code_blocks"`

	// BadCodeBlocks is the count of blocks that failed validation.
	BadCodeBlocks int `json:"bad_code_blocks"`

	// Structure holds one result per rendered page.
	Structure []StructureResult `json:"structure"`

	// Duplicates lists near-duplicate post pairs.
	Duplicates []DuplicateResult `json:"duplicates,omitempty"`

	// Timing provides duration breakdowns for the run.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when the run itself failed.
	Error *ErrorDetail `json:"error,omitempty"`
}

// BuildReport summarises one site build.
type BuildReport struct {
	Success bool `json:"success"`

	// Pages is the number of HTML files written.
	Pages int `json:"pages"`

	// Posts is the number of posts rendered.
	Posts int `json:"posts"`

	// Bytes is the total size of the written output.
	Bytes int64 `json:"bytes"`

	// OutputDir is where the site was written.
	OutputDir string `json:"output_dir"`

	Timing TimingInfo `json:"timing"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo provides millisecond duration breakdowns.
type TimingInfo struct {
	TotalMs  int64 `json:"total_ms"`
	RenderMs int64 `json:"render_ms,omitempty"`
	ProbeMs  int64 `json:"probe_ms,omitempty"`
}

// PoolStats is a snapshot of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	Posts     int       `json:"posts"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}
