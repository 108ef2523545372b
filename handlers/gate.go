package handlers

import (
	"net/http"

	"jiahe-site/response"

	"github.com/gin-gonic/gin"
)

// LoadingGate holds page requests behind the loading page until the site
// data has been hydrated.
func (h *Handler) LoadingGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.site.IsReady() {
			c.Next()
			return
		}
		c.Header("Refresh", "1")
		c.Header("Cache-Control", "no-store")
		c.HTML(http.StatusServiceUnavailable, "loading.html", nil)
		c.Abort()
	}
}

// APIGate is LoadingGate for JSON routes.
func (h *Handler) APIGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.site.IsReady() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		response.Abort(c, response.ErrNotReady)
	}
}
