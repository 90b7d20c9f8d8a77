// File: middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"go-meet-stake/logger"
)

// userKey is where the authenticated address lives in the gin context.
const userKey = "user"

// CurrentUser returns the authenticated address for this request, or "".
func CurrentUser(c *gin.Context) string {
	addr, _ := c.Get(userKey)
	s, _ := addr.(string)
	return s
}

// -------------- authentication middleware --------------

// AuthRequired ensures the caller is authenticated, either by a login session
// (browser flow) or a Bearer token (API clients). The resolved address is
// stashed in the gin context for handlers.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// session first: the browser flow
		session := sessions.Default(c)
		if user, ok := session.Get(userKey).(string); ok && user != "" {
			c.Set(userKey, user)
			c.Next()
			return
		}

		// fall back to a Bearer token
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				claims, err := jwtManager.Validate(parts[1])
				if err == nil {
					c.Set(userKey, claims.Address)
					c.Next()
					return
				}
				logger.Warn.Printf("[AuthRequired] rejected bearer token: %v", err)
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrMissingAuth.Error()})
	}
}
