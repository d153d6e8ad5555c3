package handlers

import (
	"github.com/gin-gonic/gin"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/access"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/internal/domain/survey"
	"giftworks/internal/infrastructure/http/v1/dto"
)

// OrgHandler handles organization lifecycle and membership endpoints.
type OrgHandler struct {
	*BaseHandler
	service *org.Service
	surveys *survey.Service
	users   identity.Repository
	allow   *access.Allowlist
}

// NewOrgHandler creates a new organization handler.
func NewOrgHandler(base *BaseHandler, service *org.Service, surveys *survey.Service, users identity.Repository, allow *access.Allowlist) *OrgHandler {
	return &OrgHandler{BaseHandler: base, service: service, surveys: surveys, users: users, allow: allow}
}

// Create handles POST /orgs.
func (h *OrgHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	var req dto.CreateOrgRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Create(ctx, rc.User, req.Name, req.Slug)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromOrg(o))
}

// Join handles POST /orgs/join.
func (h *OrgHandler) Join(c *gin.Context) {
	ctx := c.Request.Context()

	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	var req dto.JoinOrgRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Join(ctx, rc.User, req.Slug)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"organization": dto.FromOrg(o),
		"status":       string(identity.MembershipPending),
	})
}

// CheckSlug handles GET /orgs/check-slug.
func (h *OrgHandler) CheckSlug(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		h.Error(c, apperror.NewValidation("slug query parameter is required"))
		return
	}

	available, err := h.service.CheckSlug(c.Request.Context(), slug)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"slug": slug, "available": available})
}

// Search handles GET /orgs/search.
func (h *OrgHandler) Search(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 20)
	results, err := h.service.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"organizations": dto.FromOrgs(results)})
}

// Current handles GET /orgs/current.
func (h *OrgHandler) Current(c *gin.Context) {
	rc, ok := h.AccessContext(c)
	if !ok {
		return
	}

	o, err := access.RequireOrganization(rc)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrg(o))
}

// Update handles PATCH /orgs/current.
func (h *OrgHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	var req dto.UpdateOrgRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.service.Update(ctx, actor, o, org.UpdateParams{
		Name:     req.Name,
		Branding: req.Branding,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrg(o))
}

// ListMembers handles GET /orgs/current/members.
func (h *OrgHandler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()

	o, _, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	members, err := h.users.ListMembers(ctx, o.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"members": dto.FromUsers(members)})
}

// Invite handles POST /orgs/current/invite.
func (h *OrgHandler) Invite(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	var req dto.InviteMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	role := identity.RoleUser
	if req.Role == string(identity.RoleAdmin) {
		role = identity.RoleAdmin
	}

	if err := h.service.InviteMember(ctx, actor, o, req.Email, role); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "invitation recorded")
}

// ApproveMember handles POST /orgs/current/members/:id/approve.
func (h *OrgHandler) ApproveMember(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	userID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.service.ApproveMember(ctx, actor, o, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(member))
}

// RejectMember handles DELETE /orgs/current/members/:id.
func (h *OrgHandler) RejectMember(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	userID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.RejectMember(ctx, actor, o, userID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// UpdateMemberRole handles PATCH /orgs/current/members/:id/role.
func (h *OrgHandler) UpdateMemberRole(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	userID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	member, err := h.service.UpdateMemberRole(ctx, actor, o, userID, identity.Role(req.Role))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(member))
}

// BulkApprove handles POST /orgs/current/members/bulk-approve.
func (h *OrgHandler) BulkApprove(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	var req dto.BulkMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	approved, err := h.service.BulkApprove(ctx, actor, o, req.UserIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BulkApproveResponse{Approved: approved, Count: len(approved)})
}

// BulkReject handles POST /orgs/current/members/bulk-reject.
func (h *OrgHandler) BulkReject(c *gin.Context) {
	ctx := c.Request.Context()

	o, actor, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	var req dto.BulkMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rejected, err := h.service.BulkReject(ctx, actor, o, req.UserIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.BulkRejectResponse{Rejected: rejected})
}

// MemberAssessments handles GET /orgs/current/members/:id/assessments.
// Tenant-scoped: a user id outside the organization reads as NotFound.
func (h *OrgHandler) MemberAssessments(c *gin.Context) {
	ctx := c.Request.Context()

	o, _, ok := h.orgAdmin(c)
	if !ok {
		return
	}

	userID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.users.GetMember(ctx, o.ID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	subs, err := h.surveys.History(ctx, member, o, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"member":      dto.FromUser(member),
		"submissions": dto.FromSubmissions(subs),
	})
}

// orgAdmin resolves the access context, runs the org-admin guard and pins the
// current organization. Moderation always targets the caller's own tenant.
func (h *OrgHandler) orgAdmin(c *gin.Context) (*org.Organization, *identity.User, bool) {
	rc, ok := h.AccessContext(c)
	if !ok {
		return nil, nil, false
	}

	actor, err := access.RequireOrgAdmin(rc, h.allow)
	if err != nil {
		h.Error(c, err)
		return nil, nil, false
	}
	if rc.Org == nil {
		h.Error(c, apperror.NewForbidden("Organization membership required for admin access"))
		return nil, nil, false
	}

	return rc.Org, actor, true
}
