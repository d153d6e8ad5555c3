package dto

import (
	"time"

	"giftworks/internal/domain/org"
)

// CreateOrgRequest creates a new organization.
type CreateOrgRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
	Slug string `json:"slug" binding:"required,min=2,max=60,alphanum|contains=-"`
}

// UpdateOrgRequest changes organization details.
type UpdateOrgRequest struct {
	Name     *string        `json:"name,omitempty"`
	Branding map[string]any `json:"branding,omitempty"`
}

// JoinOrgRequest requests membership by slug.
type JoinOrgRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// InviteMemberRequest invites a user by email.
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role,omitempty"`
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// BulkMemberRequest identifies members for a bulk moderation action.
type BulkMemberRequest struct {
	UserIDs []int64 `json:"userIds" binding:"required,min=1"`
}

// BulkApproveResponse reports an all-or-nothing bulk approval outcome.
type BulkApproveResponse struct {
	Approved []string `json:"approved"`
	Count    int      `json:"count"`
}

// BulkRejectResponse reports how many members were removed.
type BulkRejectResponse struct {
	Rejected int `json:"rejected"`
}

// OrgResponse is the public view of an organization.
type OrgResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Plan      string         `json:"plan"`
	IsActive  bool           `json:"isActive"`
	IsDemo    bool           `json:"isDemo"`
	Branding  map[string]any `json:"branding,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// FromOrg maps a domain organization to its public view.
func FromOrg(o *org.Organization) OrgResponse {
	return OrgResponse{
		ID:        o.ID.String(),
		Name:      o.Name,
		Slug:      o.Slug,
		Plan:      o.Plan,
		IsActive:  o.IsActive,
		IsDemo:    o.IsDemo,
		Branding:  o.Branding,
		CreatedAt: o.CreatedAt,
	}
}

// FromOrgs maps a slice of domain organizations.
func FromOrgs(orgs []org.Organization) []OrgResponse {
	out := make([]OrgResponse, len(orgs))
	for i := range orgs {
		out[i] = FromOrg(&orgs[i])
	}
	return out
}
