package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
)

// Recovery middleware recovers from panics and logs the error.
// API callers get JSON, browsers get plain text.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(c)

				slog.Error("panic recovered",
					"error", err,
					"request_id", requestID,
					"session_id", GetSessionID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				if strings.HasPrefix(c.Request.URL.Path, "/api/") {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"error":      "Internal server error",
						"request_id": requestID,
					})
					return
				}
				c.Abort()
				c.String(http.StatusInternalServerError, "Internal server error (request %s)", requestID)
			}
		}()

		c.Next()
	}
}
