package middleware

import (
	"github.com/gin-gonic/gin"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/access"
)

// Guard middlewares wrap the pure access guards for route groups. Handlers
// that need the resolved organization or acting user re-run the guard
// themselves; the functions are cheap and side-effect free.

// RequireOrganization aborts unless the caller holds an approved seat in an
// active organization.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := access.FromContext(c.Request.Context())
		if rc == nil {
			_ = c.Error(apperror.NewUnauthorized("not authenticated"))
			c.Abort()
			return
		}
		if _, err := access.RequireOrganization(rc); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOrgAdmin aborts unless the caller may moderate their organization.
func RequireOrgAdmin(allow *access.Allowlist) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := access.FromContext(c.Request.Context())
		if _, err := access.RequireOrgAdmin(rc, allow); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSystemAdmin aborts unless the caller passes the two-factor
// system-admin check (admin role plus allowlist membership).
func RequireSystemAdmin(allow *access.Allowlist) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := access.FromContext(c.Request.Context())
		if err := access.RequireSystemAdmin(rc, allow); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
