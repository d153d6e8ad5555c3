package handlers

import (
	"github.com/gin-gonic/gin"

	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/internal/infrastructure/http/v1/dto"
	"giftworks/internal/infrastructure/storage/postgres"
)

// AdminHandler exposes system-wide operator surfaces: cross-tenant user
// listing, organization search and the request log console. Routes are
// guarded by the system-admin middleware; handlers trust it ran.
type AdminHandler struct {
	*BaseHandler
	users   identity.Repository
	orgs    org.Repository
	reqLogs *postgres.RequestLogRepo
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(base *BaseHandler, users identity.Repository, orgs org.Repository, reqLogs *postgres.RequestLogRepo) *AdminHandler {
	return &AdminHandler{BaseHandler: base, users: users, orgs: orgs, reqLogs: reqLogs}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	filter := identity.ListFilter{
		Role:   c.Query("role"),
		Email:  c.Query("email"),
		SortBy: c.Query("sort_by"),
		Desc:   c.Query("order") == "desc",
		Limit:  h.ParseIntQuery(c, "limit", 100),
	}

	users, err := h.users.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"users": dto.FromUsers(users)})
}

// SearchOrgs handles GET /admin/organizations.
func (h *AdminHandler) SearchOrgs(c *gin.Context) {
	ctx := c.Request.Context()

	orgs, err := h.orgs.Search(ctx, c.Query("q"), h.ParseIntQuery(c, "limit", 20))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"organizations": dto.FromOrgs(orgs)})
}

// ListLogs handles GET /admin/logs, the operator request-log console.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	ctx := c.Request.Context()

	logs, err := h.reqLogs.List(ctx, postgres.RequestLogFilter{
		Method:    c.Query("method"),
		Path:      c.Query("path"),
		MinStatus: h.ParseIntQuery(c, "min_status", 0),
		Limit:     h.ParseIntQuery(c, "limit", 100),
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"logs": logs})
}
