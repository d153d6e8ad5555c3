package dto

import (
	"time"

	"giftworks/internal/domain/identity"
)

// LoginRequest carries credentials for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse returns an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	OrgID            string     `json:"orgId,omitempty"`
	MembershipStatus string     `json:"membershipStatus"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
}

// FromUser maps a domain user to its public view.
func FromUser(u *identity.User) UserResponse {
	resp := UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Role:             string(u.Role),
		MembershipStatus: string(u.MembershipStatus),
		CreatedAt:        u.CreatedAt,
		LastLogin:        u.LastLogin,
	}
	if u.OrgID != nil {
		resp.OrgID = u.OrgID.String()
	}
	return resp
}

// FromUsers maps a slice of domain users.
func FromUsers(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = FromUser(&users[i])
	}
	return out
}
