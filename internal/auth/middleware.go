package auth

import (
	"strings"

	"codeberg.org/kbase/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// validates bearer tokens and adds the user to the context
func (t *Tokens) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "authorization header required")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			errors.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := t.Validate(token)
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)

		c.Next()
	}
}

// extracts user_id from context after Middleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextUserID)
	return userID, userID != ""
}

// sets the authenticated user directly, for handler tests
func SetUserID(c *gin.Context, userID string) {
	c.Set(contextUserID, userID)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", false
	}

	return token, true
}
