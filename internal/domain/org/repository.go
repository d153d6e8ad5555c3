package org

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines organization storage operations.
type Repository interface {
	// Create inserts a new organization.
	Create(ctx context.Context, o *Organization) error

	// GetByID retrieves an organization by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)

	// GetBySlug retrieves an organization by its URL slug (lowercased).
	GetBySlug(ctx context.Context, slug string) (*Organization, error)

	// Update persists mutable fields (name, plan, branding, flags).
	Update(ctx context.Context, o *Organization) error

	// SlugExists checks slug availability.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Search finds organizations by name or slug fragment (public info).
	Search(ctx context.Context, query string, limit int) ([]Organization, error)
}
