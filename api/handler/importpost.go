package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kxue43/tech-blog/importer"
	"github.com/kxue43/tech-blog/models"
)

// Import returns a handler for POST /api/v1/import. It fetches an external
// page, extracts the readable content, and writes a Markdown draft into
// the posts directory.
func Import(imp *importer.Importer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ImportResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(req.Timeout)*time.Second)
		defer cancel()

		resp, err := imp.Import(ctx, &req)
		if err != nil {
			respondError(c, err, func(detail *models.ErrorDetail) any {
				return &models.ImportResponse{Error: detail}
			})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
