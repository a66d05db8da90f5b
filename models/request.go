package models

// ValidateRequest is the payload for POST /api/v1/validate.
type ValidateRequest struct {
	// External enables probing of external hyperlinks over the network.
	// When true the run happens in the background and the response carries
	// a job id to poll.
	// Default: false.
	External bool `json:"external,omitempty"`

	// Timeout is the per-probe deadline in seconds for external links.
	// Default: server configured. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// MaxAge is the probe cache freshness window in milliseconds.
	// 0 disables cache lookups for this run.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL, when set on an external run, receives a signed event
	// once the job completes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`
}

// Defaults applies default values to unset fields.
func (r *ValidateRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 20
	}
}

// ValidateJobResponse is returned when an external validation job is accepted.
type ValidateJobResponse struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// ValidateJob tracks a background validation run.
type ValidateJob struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"` // "processing", "completed", "failed"
	Report    *ValidateReport `json:"report,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

// ImportRequest is the payload for POST /api/v1/import.
type ImportRequest struct {
	// URL is the page to import. Required.
	URL string `json:"url" binding:"required,url"`

	// Slug overrides the slug derived from the page title.
	Slug string `json:"slug,omitempty"`

	// Categories seeds the draft's front matter.
	Categories []string `json:"categories,omitempty"`

	// Timeout is the fetch deadline in seconds. Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}

// Defaults applies default values to unset fields.
func (r *ImportRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
}

// ImportResponse is the response for POST /api/v1/import.
type ImportResponse struct {
	Success bool `json:"success"`

	// Slug is the slug assigned to the drafted post.
	Slug string `json:"slug,omitempty"`

	// Path is the Markdown file written under the posts directory.
	Path string `json:"path,omitempty"`

	// Title is the extracted page title.
	Title string `json:"title,omitempty"`

	// Engine is the fetch engine that retrieved the page.
	Engine string `json:"engine,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// PostSummary is the index entry for GET /api/v1/posts.
type PostSummary struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Categories []string `json:"categories,omitempty"`
	Draft      bool     `json:"draft,omitempty"`
	Permalink  string   `json:"permalink"`
}
