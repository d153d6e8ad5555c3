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
	"giftworks/internal/domain/identity"
)

const userTable = "users"

const userColumns = `id, email, password_hash, role, org_id, membership_status,
	   global_preferences, org_preferences, created_at, last_login`

// UserRepo implements identity.Repository on the shared database. Tenant
// scoping is enforced by org_id predicates on every member query.
type UserRepo struct {
	txm *TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create inserts a new user and backfills the generated ID.
func (r *UserRepo) Create(ctx context.Context, user *identity.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			email, password_hash, role, org_id, membership_status,
			global_preferences, org_preferences, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.Role, user.OrgID, user.MembershipStatus,
		user.GlobalPrefs, user.OrgPrefs, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID int64) (*identity.User, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(q.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}

// GetOrCreateByEmail finds a user by email or creates one with defaults.
func (r *UserRepo) GetOrCreateByEmail(ctx context.Context, email string) (*identity.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	user = &identity.User{
		Email:            email,
		Role:             identity.RoleUser,
		MembershipStatus: identity.MembershipActive,
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update persists mutable user fields.
func (r *UserRepo) Update(ctx context.Context, user *identity.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE users SET
			password_hash = $2,
			role = $3,
			org_id = $4,
			membership_status = $5,
			global_preferences = $6,
			org_preferences = $7,
			last_login = $8
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		user.ID, user.PasswordHash, user.Role, user.OrgID, user.MembershipStatus,
		user.GlobalPrefs, user.OrgPrefs, user.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID)
	}

	return nil
}

// ListMembers returns every user attached to an organization.
func (r *UserRepo) ListMembers(ctx context.Context, orgID uuid.UUID) ([]identity.User, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE org_id = $1 ORDER BY created_at ASC`

	var users []identity.User
	if err := pgxscan.Select(ctx, q, &users, query, orgID); err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	return users, nil
}

// ListMembersByIDs returns users from the given set that belong to the
// organization. Users outside the org fall out of the result set silently.
func (r *UserRepo) ListMembersByIDs(ctx context.Context, orgID uuid.UUID, userIDs []int64, status *identity.MembershipStatus) ([]identity.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	builder := squirrel.
		Select("id", "email", "password_hash", "role", "org_id", "membership_status",
			"global_preferences", "org_preferences", "created_at", "last_login").
		From(userTable).
		Where(squirrel.Eq{"org_id": orgID, "id": userIDs}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)
	if status != nil {
		builder = builder.Where(squirrel.Eq{"membership_status": *status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []identity.User
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &users, query, args...); err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	return users, nil
}

// GetMember returns a user only if they belong to the organization. A user in
// another tenant surfaces as not found, never as forbidden.
func (r *UserRepo) GetMember(ctx context.Context, orgID uuid.UUID, userID int64) (*identity.User, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND org_id = $2`

	user, err := scanUser(q.QueryRow(ctx, query, userID, orgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}

	return user, nil
}

// CountMembers counts users in an organization, optionally by status.
func (r *UserRepo) CountMembers(ctx context.Context, orgID uuid.UUID, status *identity.MembershipStatus) (int64, error) {
	builder := squirrel.
		Select("COUNT(*)").
		From(userTable).
		Where(squirrel.Eq{"org_id": orgID}).
		PlaceholderFormat(squirrel.Dollar)
	if status != nil {
		builder = builder.Where(squirrel.Eq{"membership_status": *status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// List retrieves users across all tenants with filtering and sorting.
func (r *UserRepo) List(ctx context.Context, filter identity.ListFilter) ([]identity.User, error) {
	builder := squirrel.
		Select("id", "email", "password_hash", "role", "org_id", "membership_status",
			"global_preferences", "org_preferences", "created_at", "last_login").
		From(userTable).
		PlaceholderFormat(squirrel.Dollar)

	if filter.Role != "" {
		builder = builder.Where(squirrel.Eq{"role": filter.Role})
	}
	if filter.Email != "" {
		builder = builder.Where(squirrel.ILike{"email": "%" + filter.Email + "%"})
	}

	orderCol := "created_at"
	switch filter.SortBy {
	case "email":
		orderCol = "email"
	case "last_login":
		orderCol = "last_login"
	case "id":
		orderCol = "id"
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}
	builder = builder.OrderBy(orderCol + " " + direction)

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []identity.User
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &users, query, args...); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

// ThemeCounts aggregates theme selection across an organization's members.
// The org overlay wins over the global layer, unset themes count as default.
func (r *UserRepo) ThemeCounts(ctx context.Context, orgID uuid.UUID) (map[string]int64, error) {
	q := r.txm.GetQuerier(ctx)

	query := `
		SELECT COALESCE(org_preferences->>'theme', global_preferences->>'theme', 'default') AS theme,
			   COUNT(*) AS n
		FROM users
		WHERE org_id = $1
		GROUP BY 1
	`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("query theme counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var theme string
		var n int64
		if err := rows.Scan(&theme, &n); err != nil {
			return nil, fmt.Errorf("scan theme count: %w", err)
		}
		counts[theme] = n
	}
	return counts, rows.Err()
}

func scanUser(row pgx.Row) (*identity.User, error) {
	var user identity.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.OrgID,
		&user.MembershipStatus, &user.GlobalPrefs, &user.OrgPrefs,
		&user.CreatedAt, &user.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Ensure interface compliance
var _ identity.Repository = (*UserRepo)(nil)
