package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/casino-dashboard/internal/auth"
)

const (
	// UserIDHeader carries the session subject's Discord user id.
	UserIDHeader = "X-User-ID"

	// SessionKey is the key used to store the session in the context
	SessionKey = "session"
)

// Session extracts the caller's access credential and user id into an
// auth.Session. A missing credential is not rejected here; downstream
// services treat credential-less sessions as a documented empty-result state.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess auth.Session

		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			sess.AccessToken = token
		}
		sess.UserID = c.GetHeader(UserIDHeader)

		c.Set(SessionKey, sess)
		c.Next()
	}
}

// GetSession retrieves the session from the gin context. Returns a zero
// (unauthenticated) session when the middleware did not run.
func GetSession(c *gin.Context) auth.Session {
	if v, exists := c.Get(SessionKey); exists {
		if sess, ok := v.(auth.Session); ok {
			return sess
		}
	}
	return auth.Session{}
}
