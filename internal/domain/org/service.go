package org

import (
	"context"
	"fmt"
	"strings"

	"giftworks/internal/core/apperror"
	"giftworks/internal/core/tx"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/entitlement"
	"giftworks/internal/domain/identity"
	"giftworks/pkg/logger"
)

// Service implements organization lifecycle and membership moderation.
// Every mutation runs in a transaction with its audit record staged inside,
// so the action and its trail commit or roll back together. Authorization is
// the caller's job (guards run before the service is reached); entitlement
// enforcement happens here because it needs count queries.
type Service struct {
	orgs    Repository
	users   identity.Repository
	auditor *audit.Emitter
	txm     tx.Manager
}

// NewService creates a Service.
func NewService(orgs Repository, users identity.Repository, auditor *audit.Emitter, txm tx.Manager) *Service {
	return &Service{orgs: orgs, users: users, auditor: auditor, txm: txm}
}

// UpdateParams are the mutable organization fields an org admin may change.
type UpdateParams struct {
	Name     *string
	Branding map[string]any
}

// Create creates an organization; the creator becomes its first active admin.
func (s *Service) Create(ctx context.Context, actor *identity.User, name, slug string) (*Organization, error) {
	slug = strings.ToLower(slug)
	if IsReservedSlug(slug) {
		return nil, apperror.NewValidation(fmt.Sprintf("slug %q is reserved", slug))
	}
	if actor.OrgID != nil {
		return nil, apperror.NewValidation("you are already associated with an organization")
	}

	taken, err := s.orgs.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.NewDuplicate("organization", "slug", slug)
	}

	o := New(name, slug)
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, o); err != nil {
			return err
		}

		actor.OrgID = &o.ID
		actor.Role = identity.RoleAdmin
		actor.MembershipStatus = identity.MembershipActive
		if err := s.users.Update(ctx, actor); err != nil {
			return err
		}

		s.auditor.LogAction(ctx, actor, "create_org", "organization", o.ID.String(),
			map[string]any{"name": o.Name, "slug": o.Slug}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "organization_created", "org_id", o.ID.String(), "slug", o.Slug)
	return o, nil
}

// Update changes organization details (name, branding).
func (s *Service) Update(ctx context.Context, actor *identity.User, o *Organization, params UpdateParams) error {
	if params.Name != nil {
		o.Name = *params.Name
	}
	if params.Branding != nil {
		o.Branding = params.Branding
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.orgs.Update(ctx, o); err != nil {
			return err
		}

		details := map[string]any{}
		if params.Name != nil {
			details["name"] = *params.Name
		}
		if params.Branding != nil {
			details["branding"] = params.Branding
		}
		s.auditor.LogAction(ctx, actor, "update_org", "organization", o.ID.String(), details, audit.LevelInfo)
		return nil
	})
}

// InviteMember records an invitation after enforcing the member quota.
// Every seat holder counts against the invite quota, pending included.
func (s *Service) InviteMember(ctx context.Context, actor *identity.User, o *Organization, email string, role identity.Role) error {
	total, err := s.users.CountMembers(ctx, o.ID, nil)
	if err != nil {
		return err
	}
	if err := entitlement.CheckQuota(o.Plan, entitlement.FeatureUsers, total, 1); err != nil {
		logger.Warn(ctx, "tier_limit_reached", "org_id", o.ID.String(), "current", total)
		return err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		if existing.OrgID != nil && *existing.OrgID == o.ID {
			return apperror.NewConflict("User is already a member of this organization")
		}
		if existing.OrgID != nil {
			return apperror.NewConflict("User is already a member of another organization")
		}
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		s.auditor.LogAction(ctx, actor, "invite_member", "organization", o.ID.String(),
			map[string]any{"email": email, "role": string(role)}, audit.LevelInfo)
		return nil
	})
}

// CheckSlug reports whether slug can still be claimed. Reserved names are
// never available regardless of database state.
func (s *Service) CheckSlug(ctx context.Context, slug string) (bool, error) {
	slug = strings.ToLower(slug)
	if IsReservedSlug(slug) {
		return false, nil
	}
	taken, err := s.orgs.SlugExists(ctx, slug)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Search finds organizations by name or slug fragment. Only public fields are
// exposed; membership is required to see anything else.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Organization, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidation("search query must not be empty")
	}
	return s.orgs.Search(ctx, query, limit)
}

// Join requests membership in the organization with the given slug. The
// requester goes to pending until an admin approves.
func (s *Service) Join(ctx context.Context, actor *identity.User, slug string) (*Organization, error) {
	if actor.OrgID != nil {
		return nil, apperror.NewValidation("you are already associated with an organization")
	}

	o, err := s.orgs.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		actor.OrgID = &o.ID
		actor.Role = identity.RoleUser
		actor.MembershipStatus = identity.MembershipPending
		if err := s.users.Update(ctx, actor); err != nil {
			return err
		}

		s.auditor.LogAction(ctx, actor, "join_request", "organization", o.ID.String(),
			map[string]any{"slug": o.Slug}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ApproveMember activates a pending member after re-checking the active-seat
// quota. Approving an already active member is a no-op.
func (s *Service) ApproveMember(ctx context.Context, actor *identity.User, o *Organization, userID int64) (*identity.User, error) {
	member, err := s.users.GetMember(ctx, o.ID, userID)
	if err != nil {
		return nil, err
	}
	if member.MembershipStatus == identity.MembershipActive {
		return member, nil
	}

	active := identity.MembershipActive
	activeCount, err := s.users.CountMembers(ctx, o.ID, &active)
	if err != nil {
		return nil, err
	}
	if err := entitlement.CheckQuota(o.Plan, entitlement.FeatureUsers, activeCount, 1); err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		member.MembershipStatus = identity.MembershipActive
		if err := s.users.Update(ctx, member); err != nil {
			return err
		}
		s.auditor.LogAction(ctx, actor, "approve_member", "user", fmt.Sprint(member.ID),
			map[string]any{"email": member.Email}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RejectMember removes a pending or active member from the organization,
// resetting their role and status for standalone use. Self-removal through
// moderation is rejected.
func (s *Service) RejectMember(ctx context.Context, actor *identity.User, o *Organization, userID int64) (*identity.User, error) {
	member, err := s.users.GetMember(ctx, o.ID, userID)
	if err != nil {
		return nil, err
	}
	if member.ID == actor.ID {
		return nil, apperror.NewValidation("cannot reject or remove yourself")
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		member.LeaveOrganization()
		if err := s.users.Update(ctx, member); err != nil {
			return err
		}
		s.auditor.LogAction(ctx, actor, "reject_member", "user", fmt.Sprint(member.ID),
			map[string]any{"email": member.Email}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberRole changes a member's role within the organization.
func (s *Service) UpdateMemberRole(ctx context.Context, actor *identity.User, o *Organization, userID int64, role identity.Role) (*identity.User, error) {
	member, err := s.users.GetMember(ctx, o.ID, userID)
	if err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		member.Role = role
		if err := s.users.Update(ctx, member); err != nil {
			return err
		}
		s.auditor.LogAction(ctx, actor, "member_updated_by_org_admin", "user", fmt.Sprint(member.ID),
			map[string]any{"target_user_email": member.Email, "new_role": string(role)}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// BulkApprove activates pending members all-or-nothing: when the batch
// exceeds remaining active-seat capacity the whole batch is rejected and no
// member transitions. Requires the bulk-actions entitlement. Returns the
// emails of approved members.
func (s *Service) BulkApprove(ctx context.Context, actor *identity.User, o *Organization, userIDs []int64) ([]string, error) {
	if err := entitlement.RequireFeature(o.Plan, entitlement.FeatureBulkActions); err != nil {
		return nil, err
	}

	pending := identity.MembershipPending
	eligible, err := s.users.ListMembersByIDs(ctx, o.ID, userIDs, &pending)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	active := identity.MembershipActive
	activeCount, err := s.users.CountMembers(ctx, o.ID, &active)
	if err != nil {
		return nil, err
	}
	if err := entitlement.CheckBatchQuota(o.Plan, entitlement.FeatureUsers, activeCount, int64(len(eligible))); err != nil {
		return nil, err
	}

	approved := make([]string, 0, len(eligible))
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for i := range eligible {
			member := &eligible[i]
			member.MembershipStatus = identity.MembershipActive
			if err := s.users.Update(ctx, member); err != nil {
				return err
			}
			approved = append(approved, member.Email)

			s.auditor.LogAction(ctx, actor, "approve_member", "user", fmt.Sprint(member.ID),
				map[string]any{"email": member.Email, "bulk": true}, audit.LevelInfo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// BulkReject removes members from the organization, skipping the actor.
// Requires the bulk-actions entitlement. Returns the number removed.
func (s *Service) BulkReject(ctx context.Context, actor *identity.User, o *Organization, userIDs []int64) (int, error) {
	if err := entitlement.RequireFeature(o.Plan, entitlement.FeatureBulkActions); err != nil {
		return 0, err
	}

	members, err := s.users.ListMembersByIDs(ctx, o.ID, userIDs, nil)
	if err != nil {
		return 0, err
	}

	rejected := 0
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for i := range members {
			member := &members[i]
			if member.ID == actor.ID {
				continue
			}
			member.LeaveOrganization()
			if err := s.users.Update(ctx, member); err != nil {
				return err
			}
			rejected++

			s.auditor.LogAction(ctx, actor, "reject_member", "user", fmt.Sprint(member.ID),
				map[string]any{"email": member.Email, "bulk": true}, audit.LevelInfo)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rejected, nil
}
