package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireReady blocks roster endpoints until the startup load has succeeded.
// status returns "loading", "ready" or "failed" plus the load error, if any.
func RequireReady(status func() (string, string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, loadErr := status()

		switch s {
		case "ready":
			c.Next()
			return
		case "loading":
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":      "roster_loading",
					"message":   "The roster is still loading.",
					"requestId": c.GetString(CtxRequestID),
				},
			})
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":      "roster_unavailable",
					"message":   "The roster could not be loaded.",
					"requestId": c.GetString(CtxRequestID),
					"details":   gin.H{"reason": loadErr},
				},
			})
		}
	}
}
