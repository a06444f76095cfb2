package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"fitreport/internal/auth"
)

// AuthCookieName is the cookie holding the login token.
const AuthCookieName = "auth_token"

// SessionMiddleware decodes the login token from the auth_token cookie or a Bearer
// Authorization header and attaches the resulting auth.Session to the request context.
// Requests without a usable token pass through unchanged.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := tokenFromRequest(c); raw != "" {
			if claims, err := auth.DecodeToken(raw); err == nil {
				ctx := auth.WithSession(c.Request.Context(), auth.NewSession(claims))
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// SessionFromContext is a gin shortcut for auth.SessionFromContext.
func SessionFromContext(c *gin.Context) (auth.Session, bool) {
	return auth.SessionFromContext(c.Request.Context())
}
