package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kxue43/tech-blog/api/handler"
	"github.com/kxue43/tech-blog/api/middleware"
	"github.com/kxue43/tech-blog/browser"
	"github.com/kxue43/tech-blog/config"
	"github.com/kxue43/tech-blog/importer"
	"github.com/kxue43/tech-blog/site"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
// Anything that does not match an API route is served from the built site,
// which makes the server double as a local preview.
func NewRouter(st *site.Site, imp *importer.Importer, br *browser.Browser, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(st, br, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Posts
	protected.GET("/posts", handler.ListPosts(st))
	protected.GET("/posts/:slug", handler.GetPost(st))

	// Build
	protected.POST("/build", handler.Build(st))

	// Validate
	protected.POST("/validate", handler.Validate(st, cfg.Webhook.Secret))
	protected.GET("/validate/:id", handler.GetValidate())

	// Import
	protected.POST("/import", handler.Import(imp))

	// Static preview of the rendered site.
	fileServer := http.FileServer(http.Dir(st.OutputDir()))
	r.NoRoute(func(c *gin.Context) {
		fileServer.ServeHTTP(c.Writer, c.Request)
	})

	return r
}
