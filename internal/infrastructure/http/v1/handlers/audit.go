package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/access"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/entitlement"
	"giftworks/internal/infrastructure/http/v1/dto"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	*BaseHandler
	store audit.Store
	allow *access.Allowlist
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, store audit.Store, allow *access.Allowlist) *AuditHandler {
	return &AuditHandler{BaseHandler: base, store: store, allow: allow}
}

// List handles GET /audit. Super admins see every tenant and may filter by
// org; org admins are pinned to their own organization and need the
// audit-logs entitlement.
func (h *AuditHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	if _, err := access.RequireOrgAdmin(rc, h.allow); err != nil {
		h.Error(c, err)
		return
	}

	filter := audit.Filter{
		Action: c.Query("action"),
		Page:   h.ParseIntQuery(c, "page", 1),
		Limit:  h.ParseIntQuery(c, "limit", 50),
	}

	if access.IsSuperAdmin(rc, h.allow) {
		if raw := c.Query("org_id"); raw != "" {
			orgID, err := uuid.Parse(raw)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid org_id"))
				return
			}
			filter.OrgID = &orgID
		}
	} else {
		if rc.Org == nil {
			h.Error(c, apperror.NewForbidden("Organization membership required for admin access"))
			return
		}
		if err := entitlement.RequireFeature(rc.Org.Plan, entitlement.FeatureAuditLogs); err != nil {
			h.Error(c, err)
			return
		}
		filter.OrgID = &rc.Org.ID
	}

	records, total, err := h.store.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PageResponse[dto.AuditRecordResponse]{
		Items: dto.FromAuditRecords(records),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}
