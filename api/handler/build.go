package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kxue43/tech-blog/models"
	"github.com/kxue43/tech-blog/site"
)

// Build returns a handler for POST /api/v1/build. It reloads the posts
// from disk and rewrites the static output.
func Build(st *site.Site) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := st.Build()
		if err != nil {
			if report == nil {
				report = &models.BuildReport{}
			}
			respondError(c, err, func(detail *models.ErrorDetail) any {
				report.Success = false
				report.Error = detail
				return report
			})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// respondError maps a BuildError to the correct HTTP status code and
// writes the JSON body produced by wrap.
func respondError(c *gin.Context, err error, wrap func(*models.ErrorDetail) any) {
	buildErr, ok := err.(*models.BuildError)
	if !ok {
		buildErr = models.NewBuildError(models.ErrCodeInternal, err.Error(), err)
	}
	c.JSON(mapErrorToStatus(buildErr), wrap(buildErr.ToDetail()))
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.BuildError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetch, models.ErrCodeImport:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput, models.ErrCodeFrontMatter:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
