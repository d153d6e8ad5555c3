// Package identity provides the user model and token handling.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's system-wide role.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// MembershipStatus tracks a user's state within their organization.
type MembershipStatus string

const (
	MembershipPending MembershipStatus = "pending"
	MembershipActive  MembershipStatus = "active"
)

// User represents an authenticated account. Users are created on first
// successful authentication (upsert-by-email) or by an org admin invite.
// Never hard-deleted here; removal from an org clears OrgID and resets
// role/status to defaults.
type User struct {
	ID               int64            `db:"id" json:"id"`
	Email            string           `db:"email" json:"email"`
	PasswordHash     string           `db:"password_hash" json:"-"`
	Role             Role             `db:"role" json:"role"`
	OrgID            *uuid.UUID       `db:"org_id" json:"orgId,omitempty"`
	MembershipStatus MembershipStatus `db:"membership_status" json:"membershipStatus"`
	GlobalPrefs      map[string]any   `db:"global_preferences" json:"-"`
	OrgPrefs         map[string]any   `db:"org_preferences" json:"-"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	LastLogin        *time.Time       `db:"last_login" json:"lastLogin,omitempty"`
}

// IsActiveMember reports whether the user holds an approved seat in an org.
func (u *User) IsActiveMember() bool {
	return u.OrgID != nil && u.MembershipStatus == MembershipActive
}

// LeaveOrganization clears the org association and resets role/status to
// defaults so the account remains usable standalone.
func (u *User) LeaveOrganization() {
	u.OrgID = nil
	u.Role = RoleUser
	u.MembershipStatus = MembershipActive
}

// RecordLogin stamps the last-login time.
func (u *User) RecordLogin(now time.Time) {
	u.LastLogin = &now
}
