package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// MaxInFlight caps concurrently served requests at limit. Arrivals beyond
// the cap queue until a slot frees, mirroring platform admission control; a
// request whose client gives up while queued is rejected with 503.
func MaxInFlight(limit int64) gin.HandlerFunc {
	slots := semaphore.NewWeighted(limit)

	return func(c *gin.Context) {
		if err := slots.Acquire(c.Request.Context(), 1); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "server at capacity",
			})
			c.Abort()
			return
		}
		defer slots.Release(1)

		c.Next()
	}
}
