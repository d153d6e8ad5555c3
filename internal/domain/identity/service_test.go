package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"giftworks/internal/core/apperror"
)

type stubTx struct{}

func (stubTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type stubRepo struct {
	byEmail map[string]*User
	updated []int64
}

func (f *stubRepo) GetByID(_ context.Context, userID int64) (*User, error) {
	return nil, apperror.NewNotFound("user", userID)
}

func (f *stubRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *stubRepo) GetOrCreateByEmail(ctx context.Context, email string) (*User, error) {
	if u, err := f.GetByEmail(ctx, email); err == nil {
		return u, nil
	}
	u := &User{ID: int64(100 + len(f.byEmail)), Email: email, Role: RoleUser, MembershipStatus: MembershipActive, CreatedAt: time.Now().UTC()}
	f.byEmail[email] = u
	return u, nil
}

func (f *stubRepo) Create(context.Context, *User) error { return nil }

func (f *stubRepo) Update(_ context.Context, u *User) error {
	f.updated = append(f.updated, u.ID)
	return nil
}

func (f *stubRepo) ListMembers(context.Context, uuid.UUID) ([]User, error) { return nil, nil }

func (f *stubRepo) ListMembersByIDs(context.Context, uuid.UUID, []int64, *MembershipStatus) ([]User, error) {
	return nil, nil
}

func (f *stubRepo) GetMember(_ context.Context, _ uuid.UUID, userID int64) (*User, error) {
	return nil, apperror.NewNotFound("user", userID)
}

func (f *stubRepo) CountMembers(context.Context, uuid.UUID, *MembershipStatus) (int64, error) {
	return 0, nil
}

func (f *stubRepo) List(context.Context, ListFilter) ([]User, error) { return nil, nil }

func newLoginFixture(t *testing.T) (*Service, *stubRepo, *JWTService) {
	t.Helper()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	repo := &stubRepo{byEmail: map[string]*User{
		"jane@example.com": {ID: 7, Email: "jane@example.com", PasswordHash: hash, Role: RoleUser, MembershipStatus: MembershipActive},
		"sso@example.com":  {ID: 8, Email: "sso@example.com", Role: RoleUser, MembershipStatus: MembershipActive},
	}}
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, jwtSvc, stubTx{}), repo, jwtSvc
}

func TestLogin(t *testing.T) {
	svc, repo, jwtSvc := newLoginFixture(t)

	token, expiresAt, user, err := svc.Login(context.Background(), "jane@example.com", "correct horse battery staple")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := jwtSvc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)

	// Successful login stamps last_login and persists it.
	assert.NotNil(t, user.LastLogin)
	assert.Equal(t, []int64{7}, repo.updated)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, repo, _ := newLoginFixture(t)

	cases := map[string][2]string{
		"unknown email":  {"nobody@example.com", "whatever"},
		"wrong password": {"jane@example.com", "wrong"},
		// Accounts created without a password (invite placeholder) can never
		// authenticate with an empty or any other password.
		"empty hash":           {"sso@example.com", ""},
		"empty hash with pass": {"sso@example.com", "anything"},
	}
	for name, c := range cases {
		_, _, _, err := svc.Login(context.Background(), c[0], c[1])
		assert.True(t, apperror.IsUnauthorized(err), name)
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "could not validate credentials", appErr.Message, name)
	}
	assert.Empty(t, repo.updated)
}

func TestRegister(t *testing.T) {
	svc, repo, jwtSvc := newLoginFixture(t)

	token, _, user, err := svc.Register(context.Background(), "new@example.com", "long enough password")
	assert.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Contains(t, repo.updated, user.ID)

	claims, err := jwtSvc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", claims.Email)

	// The freshly registered credentials work for a normal login.
	_, _, again, err := svc.Login(context.Background(), "new@example.com", "long enough password")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestRegisterRejections(t *testing.T) {
	svc, _, _ := newLoginFixture(t)

	_, _, _, err := svc.Register(context.Background(), "new@example.com", "short")
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// An account that already holds a password cannot be re-registered.
	_, _, _, err = svc.Register(context.Background(), "jane@example.com", "another password")
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)

	// A passwordless placeholder gets its password attached instead.
	_, _, user, err := svc.Register(context.Background(), "sso@example.com", "fresh password here")
	assert.NoError(t, err)
	assert.Equal(t, int64(8), user.ID)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	// Two hashes of the same password differ (salted).
	hash2, err := HashPassword("s3cret")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestUserModel(t *testing.T) {
	orgID := uuid.New()
	u := &User{ID: 1, OrgID: &orgID, Role: RoleAdmin, MembershipStatus: MembershipPending}

	assert.False(t, u.IsActiveMember())
	u.MembershipStatus = MembershipActive
	assert.True(t, u.IsActiveMember())

	u.LeaveOrganization()
	assert.Nil(t, u.OrgID)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, MembershipActive, u.MembershipStatus)
	assert.False(t, u.IsActiveMember())

	now := time.Now().UTC()
	u.RecordLogin(now)
	assert.Equal(t, &now, u.LastLogin)
}
