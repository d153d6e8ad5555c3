// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"giftworks/internal/domain/entitlement"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/internal/infrastructure/storage/postgres"
	"giftworks/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	operatorID, err := seedOperator(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed operator user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoOrg(ctx, pool, log, operatorID); err != nil {
			log.Fatalw("failed to seed demo organization", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedOperator creates the operator account named in OPERATOR_EMAIL. The
// account gets the admin role; system-admin rights additionally require the
// email to appear in OPERATOR_EMAILS at server start.
func seedOperator(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (int64, error) {
	email := os.Getenv("OPERATOR_EMAIL")
	if email == "" {
		email = "operator@giftworks.app"
	}

	password := os.Getenv("OPERATOR_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
	}

	var existingID int64
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE lower(email) = lower($1)`, email,
	).Scan(&existingID)
	if err == nil {
		log.Infow("operator user already exists", "email", email, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("check operator exists: %w", err)
	}

	hash, err := identity.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var userID int64
	err = pool.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, membership_status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, email, hash, identity.RoleAdmin, identity.MembershipActive, time.Now().UTC()).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("insert operator user: %w", err)
	}

	log.Infow("operator user created", "email", email, "user_id", userID)
	return userID, nil
}

// seedDemoOrg creates a read-only demo organization on the ministry plan and
// attaches the operator as its admin.
func seedDemoOrg(ctx context.Context, pool *postgres.Pool, log *logger.Logger, operatorID int64) error {
	slug := os.Getenv("DEMO_ORG_SLUG")
	if slug == "" {
		slug = "demo"
	}

	var existingID uuid.UUID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM organizations WHERE slug = $1`, slug,
	).Scan(&existingID)
	if err == nil {
		log.Infow("demo organization already exists", "slug", slug)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check demo org exists: %w", err)
	}

	o := org.New("Demo Ministry", slug)
	o.Plan = string(entitlement.PlanMinistry)
	o.IsDemo = true

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO organizations (id, name, slug, plan, is_active, is_demo, branding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.Name, o.Slug, o.Plan, o.IsActive, o.IsDemo, o.Branding, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert demo org: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		UPDATE users SET org_id = $2, membership_status = $3 WHERE id = $1
	`, operatorID, o.ID, identity.MembershipActive)
	if err != nil {
		return fmt.Errorf("attach operator to demo org: %w", err)
	}

	log.Infow("demo organization created", "slug", slug, "org_id", o.ID.String())
	return nil
}
