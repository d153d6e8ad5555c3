package handlers

import (
	"github.com/gin-gonic/gin"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/access"
	"giftworks/internal/domain/prefs"
	"giftworks/internal/infrastructure/http/v1/dto"
)

// PrefsHandler handles user preference endpoints.
type PrefsHandler struct {
	*BaseHandler
	service *prefs.Service
	allow   *access.Allowlist
}

// NewPrefsHandler creates a new preferences handler.
func NewPrefsHandler(base *BaseHandler, service *prefs.Service, allow *access.Allowlist) *PrefsHandler {
	return &PrefsHandler{BaseHandler: base, service: service, allow: allow}
}

// Get handles GET /preferences.
func (h *PrefsHandler) Get(c *gin.Context) {
	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	h.OK(c, dto.PrefsResponse{Preferences: prefs.Effective(rc.User)})
}

// Update handles PATCH /preferences.
func (h *PrefsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	var req dto.UpdatePrefsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	merged, err := h.service.Update(ctx, rc.User, rc.Org, req.Updates, req.OrgScope)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PrefsResponse{Preferences: merged})
}

// Reset handles POST /preferences/reset.
func (h *PrefsHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	var req dto.ResetPrefsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	merged, err := h.service.Reset(ctx, rc.User, req.OrgScope)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PrefsResponse{Preferences: merged})
}

// ThemeUsage handles GET /preferences/theme-usage. Org admins only, and the
// organization's plan must include theme analytics.
func (h *PrefsHandler) ThemeUsage(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	if _, err := access.RequireOrgAdmin(rc, h.allow); err != nil {
		h.Error(c, err)
		return
	}
	if rc.Org == nil {
		h.Error(c, apperror.NewForbidden("Organization membership required for admin access"))
		return
	}

	counts, err := h.service.ThemeUsage(ctx, rc.Org)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ThemeUsageResponse{Themes: counts})
}
