package identity

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"giftworks/internal/core/apperror"
	"giftworks/internal/core/tx"
	"giftworks/pkg/logger"
)

// Service handles password authentication and token issuance. Wrong email and
// wrong password produce the same generic error so accounts cannot be
// enumerated through the login form.
type Service struct {
	users Repository
	jwt   *JWTService
	txm   tx.Manager
}

// NewService creates a Service.
func NewService(users Repository, jwt *JWTService, txm tx.Manager) *Service {
	return &Service{users: users, jwt: jwt, txm: txm}
}

const msgInvalidCredentials = "could not validate credentials"

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, *User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "login_failed", "reason", "unknown_email")
			return "", time.Time{}, nil, apperror.NewUnauthorized(msgInvalidCredentials)
		}
		return "", time.Time{}, nil, err
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logger.Warn(ctx, "login_failed", "reason", "bad_password", "user_id", user.ID)
		return "", time.Time{}, nil, apperror.NewUnauthorized(msgInvalidCredentials)
	}

	token, expiresAt, err := s.jwt.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", time.Time{}, nil, apperror.NewInternal(err)
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		user.RecordLogin(time.Now().UTC())
		return s.users.Update(ctx, user)
	})
	if err != nil {
		return "", time.Time{}, nil, err
	}

	return token, expiresAt, user, nil
}

// Register creates an account on first use (upsert-by-email) and issues an
// access token. An account that already holds a password is rejected; an
// earlier passwordless placeholder gets its password attached.
func (s *Service) Register(ctx context.Context, email, password string) (string, time.Time, *User, error) {
	if len(password) < 8 {
		return "", time.Time{}, nil, apperror.NewValidation("password must be at least 8 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", time.Time{}, nil, apperror.NewInternal(err)
	}

	var user *User
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.GetOrCreateByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u.PasswordHash != "" {
			return apperror.NewDuplicate("user", "email", email)
		}

		u.PasswordHash = hash
		u.RecordLogin(time.Now().UTC())
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return "", time.Time{}, nil, err
	}

	token, expiresAt, err := s.jwt.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", time.Time{}, nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user_registered", "user_id", user.ID)
	return token, expiresAt, user, nil
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
