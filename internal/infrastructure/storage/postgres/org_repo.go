package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/org"
)

const orgTable = "organizations"

const orgColumns = `id, name, slug, plan, is_active, is_demo, branding, created_at, updated_at`

// OrgRepo implements org.Repository.
type OrgRepo struct {
	txm *TxManager
}

// NewOrgRepo creates a new organization repository.
func NewOrgRepo(txm *TxManager) *OrgRepo {
	return &OrgRepo{txm: txm}
}

// Create inserts a new organization.
func (r *OrgRepo) Create(ctx context.Context, o *org.Organization) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO organizations (
			id, name, slug, plan, is_active, is_demo, branding, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		o.ID, o.Name, o.Slug, o.Plan, o.IsActive, o.IsDemo, o.Branding,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	return nil
}

// GetByID retrieves an organization by ID.
func (r *OrgRepo) GetByID(ctx context.Context, orgID uuid.UUID) (*org.Organization, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = $1`

	o, err := scanOrg(q.QueryRow(ctx, query, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("organization", orgID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query organization: %w", err)
	}

	return o, nil
}

// GetBySlug retrieves an organization by slug.
func (r *OrgRepo) GetBySlug(ctx context.Context, slug string) (*org.Organization, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + orgColumns + ` FROM organizations WHERE slug = $1`

	o, err := scanOrg(q.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("organization", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("query organization: %w", err)
	}

	return o, nil
}

// Update persists mutable organization fields and bumps updated_at.
func (r *OrgRepo) Update(ctx context.Context, o *org.Organization) error {
	q := r.txm.GetQuerier(ctx)

	o.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE organizations SET
			name = $2,
			plan = $3,
			is_active = $4,
			is_demo = $5,
			branding = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		o.ID, o.Name, o.Plan, o.IsActive, o.IsDemo, o.Branding, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("organization", o.ID.String())
	}

	return nil
}

// SlugExists reports whether a slug is already claimed.
func (r *OrgRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`

	var exists bool
	if err := q.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Search finds organizations by name or slug fragment.
func (r *OrgRepo) Search(ctx context.Context, search string, limit int) ([]org.Organization, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	builder := squirrel.
		Select("id", "name", "slug", "plan", "is_active", "is_demo", "branding",
			"created_at", "updated_at").
		From(orgTable).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if search != "" {
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + search + "%"},
			squirrel.ILike{"slug": "%" + search + "%"},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orgs []org.Organization
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orgs, query, args...); err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	return orgs, nil
}

func scanOrg(row pgx.Row) (*org.Organization, error) {
	var o org.Organization
	err := row.Scan(
		&o.ID, &o.Name, &o.Slug, &o.Plan, &o.IsActive, &o.IsDemo, &o.Branding,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Ensure interface compliance
var _ org.Repository = (*OrgRepo)(nil)
