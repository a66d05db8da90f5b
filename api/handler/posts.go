package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kxue43/tech-blog/models"
	"github.com/kxue43/tech-blog/site"
)

// ListPosts returns a handler for GET /api/v1/posts.
func ListPosts(st *site.Site) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts := st.Posts()
		summaries := make([]models.PostSummary, 0, len(posts))
		for _, p := range posts {
			summaries = append(summaries, models.PostSummary{
				Slug:       p.Slug,
				Title:      p.FrontMatter.Title,
				Date:       p.Published.Format("2006-01-02"),
				Categories: p.FrontMatter.Categories,
				Draft:      p.FrontMatter.Draft,
				Permalink:  p.Permalink(),
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"posts": summaries,
			"total": len(summaries),
		})
	}
}

// GetPost returns a handler for GET /api/v1/posts/:slug.
// The response includes the raw Markdown body for editing tools.
func GetPost(st *site.Site) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		post := st.Post(slug)
		if post == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": models.ErrorDetail{
					Code:    models.ErrCodeNotFound,
					Message: "no post with slug " + slug,
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"post":     post,
			"markdown": post.Markdown,
		})
	}
}
