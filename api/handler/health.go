package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kxue43/tech-blog/browser"
	"github.com/kxue43/tech-blog/models"
	"github.com/kxue43/tech-blog/site"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports pool utilisation when a browser is running and degrades status
// when > 80% of pages are active. br may be nil (browser disabled).
func Health(st *site.Site, br *browser.Browser, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.PoolStats
		if br != nil {
			stats = br.Stats()
		}

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Posts:     len(st.Posts()),
			PoolStats: stats,
			Version:   "0.1.0",
		})
	}
}
