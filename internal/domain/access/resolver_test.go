package access

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"giftworks/internal/core/apperror"
	appctx "giftworks/internal/core/context"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
)

// fakeVerifier maps token strings to claims.
type fakeVerifier struct {
	claims map[string]*identity.Claims
}

func (f *fakeVerifier) Verify(token string) (*identity.Claims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("parse token: signature is invalid")
}

// fakeUserRepo serves GetByID from an in-memory map. The remaining Repository
// methods are not exercised by the resolver.
type fakeUserRepo struct {
	users map[int64]*identity.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, userID int64) (*identity.User, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*identity.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) GetOrCreateByEmail(context.Context, string) (*identity.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) Create(context.Context, *identity.User) error { return nil }
func (f *fakeUserRepo) Update(context.Context, *identity.User) error { return nil }

func (f *fakeUserRepo) ListMembers(context.Context, uuid.UUID) ([]identity.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ListMembersByIDs(context.Context, uuid.UUID, []int64, *identity.MembershipStatus) ([]identity.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetMember(context.Context, uuid.UUID, int64) (*identity.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) CountMembers(context.Context, uuid.UUID, *identity.MembershipStatus) (int64, error) {
	return 0, nil
}

func (f *fakeUserRepo) List(context.Context, identity.ListFilter) ([]identity.User, error) {
	return nil, nil
}

type fakeOrgRepo struct {
	orgs map[uuid.UUID]*org.Organization
}

func (f *fakeOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*org.Organization, error) {
	if o, ok := f.orgs[id]; ok {
		return o, nil
	}
	return nil, apperror.NewNotFound("organization", id.String())
}

func (f *fakeOrgRepo) Create(context.Context, *org.Organization) error { return nil }
func (f *fakeOrgRepo) Update(context.Context, *org.Organization) error { return nil }

func (f *fakeOrgRepo) GetBySlug(context.Context, string) (*org.Organization, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrgRepo) SlugExists(context.Context, string) (bool, error) { return false, nil }

func (f *fakeOrgRepo) Search(context.Context, string, int) ([]org.Organization, error) {
	return nil, nil
}

func claimsFor(userID string) *identity.Claims {
	return &identity.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
}

func newTestResolver() (*Resolver, *fakeUserRepo, *fakeOrgRepo) {
	orgID := uuid.New()
	demoID := uuid.New()
	danglingID := uuid.New()

	users := &fakeUserRepo{users: map[int64]*identity.User{
		1: {ID: 1, Email: "jane@example.com", Role: identity.RoleUser, OrgID: &orgID, MembershipStatus: identity.MembershipActive},
		2: {ID: 2, Email: "solo@example.com", Role: identity.RoleUser, MembershipStatus: identity.MembershipActive},
		3: {ID: 3, Email: "demo@example.com", Role: identity.RoleAdmin, OrgID: &demoID, MembershipStatus: identity.MembershipActive},
		4: {ID: 4, Email: "ghost@example.com", Role: identity.RoleUser, OrgID: &danglingID, MembershipStatus: identity.MembershipActive},
	}}
	orgs := &fakeOrgRepo{orgs: map[uuid.UUID]*org.Organization{
		orgID:  {ID: orgID, Name: "Grace Chapel", Slug: "grace", Plan: "ministry", IsActive: true},
		demoID: {ID: demoID, Name: "Demo Ministry", Slug: "demo", Plan: "ministry", IsActive: true, IsDemo: true},
	}}
	verifier := &fakeVerifier{claims: map[string]*identity.Claims{
		"tok-member":     claimsFor("1"),
		"tok-standalone": claimsFor("2"),
		"tok-demo":       claimsFor("3"),
		"tok-dangling":   claimsFor("4"),
		"tok-unknown":    claimsFor("999"),
		"tok-no-subject": claimsFor(""),
		"tok-bad-sub":    claimsFor("not-a-number"),
	}}

	return NewResolver(verifier, users, orgs), users, orgs
}

func TestResolveSuccess(t *testing.T) {
	r, users, orgs := newTestResolver()

	ctx, rc, err := r.Resolve(context.Background(), "tok-member", http.MethodGet)
	assert.NoError(t, err)
	assert.Equal(t, users.users[1], rc.User)
	assert.Equal(t, orgs.orgs[*users.users[1].OrgID], rc.Org)
	assert.Equal(t, identity.RoleUser, rc.Role)
	assert.Empty(t, rc.Permissions)

	// The resolved context is reachable from the returned context.Context.
	assert.Equal(t, rc, FromContext(ctx))

	// The ambient actor carries a redacted email, never the raw address.
	actor := appctx.GetActor(ctx)
	assert.NotNil(t, actor)
	assert.Equal(t, int64(1), actor.UserID)
	assert.Equal(t, "j***@example.com", actor.Email)
	assert.Equal(t, users.users[1].OrgID.String(), actor.OrgID)
}

func TestResolveIsRepeatable(t *testing.T) {
	r, _, _ := newTestResolver()

	_, first, err := r.Resolve(context.Background(), "tok-member", http.MethodGet)
	assert.NoError(t, err)
	_, second, err := r.Resolve(context.Background(), "tok-member", http.MethodGet)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveStandaloneUser(t *testing.T) {
	r, _, _ := newTestResolver()

	ctx, rc, err := r.Resolve(context.Background(), "tok-standalone", http.MethodPost)
	assert.NoError(t, err)
	assert.Nil(t, rc.Org)
	assert.Empty(t, appctx.GetActor(ctx).OrgID)
}

func TestResolveMissingToken(t *testing.T) {
	r, _, _ := newTestResolver()

	_, rc, err := r.Resolve(context.Background(), "", http.MethodGet)
	assert.Nil(t, rc)
	assert.True(t, apperror.IsUnauthorized(err))
	assertMessage(t, err, msgNotAuthenticated)
}

func TestResolveCredentialFailuresAreUniform(t *testing.T) {
	r, _, _ := newTestResolver()

	// Invalid signature, missing subject, malformed subject and unknown user
	// must be indistinguishable to the caller.
	for _, token := range []string{"tok-forged", "tok-no-subject", "tok-bad-sub", "tok-unknown"} {
		_, rc, err := r.Resolve(context.Background(), token, http.MethodGet)
		assert.Nil(t, rc, token)
		assert.True(t, apperror.IsUnauthorized(err), token)
		assertMessage(t, err, msgInvalidCredentials)
	}
}

func TestResolveDemoOrgReadOnly(t *testing.T) {
	r, _, _ := newTestResolver()

	// Safe methods pass.
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		_, rc, err := r.Resolve(context.Background(), "tok-demo", method)
		assert.NoError(t, err, method)
		assert.True(t, rc.Org.IsDemo)
	}

	// Unsafe methods are rejected for every member, admins included.
	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		_, rc, err := r.Resolve(context.Background(), "tok-demo", method)
		assert.Nil(t, rc, method)
		assert.True(t, apperror.IsForbidden(err), method)
		assertMessage(t, err, msgDemoReadOnly)
	}
}

func TestResolveDanglingOrgReference(t *testing.T) {
	r, _, _ := newTestResolver()

	_, rc, err := r.Resolve(context.Background(), "tok-dangling", http.MethodGet)
	assert.NoError(t, err)
	assert.Nil(t, rc.Org)
}
