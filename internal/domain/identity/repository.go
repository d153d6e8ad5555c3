package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines user storage operations. "Not found" is a legitimate,
// handled outcome surfaced as an apperror NotFound, never a raw error.
type Repository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int64) (*User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetOrCreateByEmail finds a user by email or creates one with defaults.
	GetOrCreateByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a new user.
	Create(ctx context.Context, user *User) error

	// Update persists mutable user fields (role, org, status, prefs, login).
	Update(ctx context.Context, user *User) error

	// ListMembers returns every user attached to an organization.
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]User, error)

	// ListMembersByIDs returns users from the given set that belong to the
	// organization, optionally narrowed by membership status. Users outside
	// the org are silently excluded (tenant scoping).
	ListMembersByIDs(ctx context.Context, orgID uuid.UUID, userIDs []int64, status *MembershipStatus) ([]User, error)

	// GetMember returns a user only if they belong to the organization.
	GetMember(ctx context.Context, orgID uuid.UUID, userID int64) (*User, error)

	// CountMembers counts users in an organization. A nil status counts
	// every seat holder, pending included.
	CountMembers(ctx context.Context, orgID uuid.UUID, status *MembershipStatus) (int64, error)

	// List retrieves users across all tenants with filtering and sorting.
	// System-admin surface only.
	List(ctx context.Context, filter ListFilter) ([]User, error)
}

// ListFilter narrows the cross-tenant user listing.
type ListFilter struct {
	Role   string
	Email  string
	SortBy string
	Desc   bool
	Limit  int
}
