package middleware

import (
	"context"
	"net/http"

	"github.com/Ezhil1K/ChemSure/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie names the cookie that ties a browser to its display
const SessionCookie = "gadsl_session"

const sessionKey = "session_id"

// Session assigns every browser a session id, reusing the cookie when it holds a valid one
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err == nil {
			_, err = uuid.Parse(sessionID)
		}
		if err != nil {
			sessionID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sessionID, 0, "/", "", false, true)
		}

		c.Set(sessionKey, sessionID)
		ctx := context.WithValue(c.Request.Context(), logger.SessionKey, sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID gets the session ID from gin context
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
