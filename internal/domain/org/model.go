// Package org provides the organization (tenant) model and membership flows.
package org

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary. Plan is free-text in storage and
// validated against the closed entitlement set with a free fallback; IsDemo
// tenants accept only safe HTTP verbs from any member.
type Organization struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Slug      string         `db:"slug" json:"slug"`
	Plan      string         `db:"plan" json:"plan"`
	IsActive  bool           `db:"is_active" json:"isActive"`
	IsDemo    bool           `db:"is_demo" json:"isDemo"`
	Branding  map[string]any `db:"branding" json:"branding,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// New creates an organization on the free plan.
func New(name, slug string) *Organization {
	now := time.Now().UTC()
	return &Organization{
		ID:        uuid.New(),
		Name:      name,
		Slug:      strings.ToLower(slug),
		Plan:      "free",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// reservedSlugs can never be claimed as organization slugs.
var reservedSlugs = map[string]bool{
	"www": true, "api": true, "app": true, "admin": true,
	"auth": true, "billing": true, "help": true, "support": true,
}

// IsReservedSlug reports whether slug is reserved for platform use.
func IsReservedSlug(slug string) bool {
	return reservedSlugs[strings.ToLower(slug)]
}
