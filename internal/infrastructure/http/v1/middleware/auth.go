package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"giftworks/internal/domain/access"
)

// accessTokenCookie is the fallback credential location for browser clients.
const accessTokenCookie = "access_token"

// Auth middleware resolves the bearer credential into the per-request access
// context. The Authorization header wins over the cookie when both are
// present. Failed resolution aborts with the resolver's typed error; the
// error middleware renders it.
func Auth(resolver *access.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)

		ctx, _, err := resolver.Resolve(c.Request.Context(), token, c.Request.Method)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// extractToken pulls the credential from the Authorization header, falling
// back to the access_token cookie.
func extractToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
