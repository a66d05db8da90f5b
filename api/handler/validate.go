package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kxue43/tech-blog/check"
	"github.com/kxue43/tech-blog/models"
	"github.com/kxue43/tech-blog/site"
	"github.com/kxue43/tech-blog/webhook"
)

// jobStore holds all in-flight and completed validation jobs.
var jobStore sync.Map

func init() {
	// Expire validation jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			jobStore.Range(func(key, value any) bool {
				job := value.(*models.ValidateJob)
				if job.CreatedAt < cutoff {
					jobStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// Validate returns a handler for POST /api/v1/validate.
//
// Internal-only runs are cheap and answered synchronously. External runs
// probe the network, so they execute as a background job the client polls
// via GET /api/v1/validate/:id (or receives a webhook for).
func Validate(st *site.Site, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		opts := check.RunOptions{
			External:    req.External,
			Timeout:     time.Duration(req.Timeout) * time.Second,
			CacheMaxAge: time.Duration(req.MaxAge) * time.Millisecond,
		}

		if !req.External {
			report, err := st.Validate(c.Request.Context(), opts)
			if err != nil {
				respondError(c, err, func(detail *models.ErrorDetail) any {
					return &models.ValidateReport{Error: detail}
				})
				return
			}
			c.JSON(http.StatusOK, report)
			return
		}

		jobID := "validate-" + randomID()
		job := &models.ValidateJob{
			ID:        jobID,
			Status:    "processing",
			CreatedAt: time.Now().Unix(),
		}
		jobStore.Store(jobID, job)

		go runValidateJob(st, jobID, job.CreatedAt, opts, req.WebhookURL, webhookSecret)

		c.JSON(http.StatusAccepted, models.ValidateJobResponse{
			ID:     jobID,
			Status: "processing",
		})
	}
}

// GetValidate returns a handler for GET /api/v1/validate/:id.
func GetValidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := jobStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "validation job not found",
				},
			})
			return
		}
		c.JSON(http.StatusOK, val.(*models.ValidateJob))
	}
}

// runValidateJob executes a background validation run and optionally
// notifies a webhook when it finishes.
//
// Pollers may be serializing the stored job at any moment, so the run never
// mutates it: completion stores a fresh job value under the same id.
func runValidateJob(st *site.Site, jobID string, createdAt int64, opts check.RunOptions, webhookURL, webhookSecret string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	done := &models.ValidateJob{ID: jobID, CreatedAt: createdAt}

	report, err := st.Validate(ctx, opts)
	if err != nil {
		done.Status = "failed"
		buildErr, ok := err.(*models.BuildError)
		if !ok {
			buildErr = models.NewBuildError(models.ErrCodeInternal, err.Error(), err)
		}
		done.Report = &models.ValidateReport{Error: buildErr.ToDetail()}
		slog.Error("validation job failed", "id", jobID, "error", err)
	} else {
		done.Status = "completed"
		done.Report = report
	}
	jobStore.Store(jobID, done)

	if webhookURL != "" {
		eventType := "validate.completed"
		if done.Status == "failed" {
			eventType = "validate.failed"
		}
		webhook.DeliverAsync(webhookURL, webhookSecret, &webhook.Event{
			Type:      eventType,
			JobID:     jobID,
			Timestamp: time.Now().Unix(),
			Data:      done.Report,
		})
	}
}

// randomID returns a 16-character hex id.
func randomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}
