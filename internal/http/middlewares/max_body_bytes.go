package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitUploadBody turns away uploads that announce a body over max before any
// of it is read, and caps the rest: reads past max fail with
// *http.MaxBytesError, which the form binder reports as 413.
func LimitUploadBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"code":    "payload_too_large",
				"message": fmt.Sprintf("Request body exceeds %d bytes", max),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
