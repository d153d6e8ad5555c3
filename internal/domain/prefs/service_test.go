package prefs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
)

type stubTx struct{}

func (stubTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type nullStore struct{}

func (nullStore) Insert(context.Context, *audit.Record) error { return nil }

func (nullStore) List(context.Context, audit.Filter) ([]audit.Record, int64, error) {
	return nil, 0, nil
}

type stubUsers struct {
	identity.Repository
	updated []int64
}

func (f *stubUsers) Update(_ context.Context, u *identity.User) error {
	f.updated = append(f.updated, u.ID)
	return nil
}

type stubAnalytics struct {
	counts map[string]int64
}

func (f *stubAnalytics) ThemeCounts(context.Context, uuid.UUID) (map[string]int64, error) {
	return f.counts, nil
}

func newPrefsFixture() (*Service, *stubUsers, *stubAnalytics) {
	users := &stubUsers{}
	analytics := &stubAnalytics{counts: map[string]int64{"dark": 5, "default": 12}}
	return NewService(users, analytics, audit.NewEmitter(nullStore{}), stubTx{}), users, analytics
}

func memberOf(o *org.Organization) *identity.User {
	u := &identity.User{ID: 7, Email: "jane@example.com", MembershipStatus: identity.MembershipActive}
	if o != nil {
		u.OrgID = &o.ID
	}
	return u
}

func TestEffective(t *testing.T) {
	orgID := uuid.New()
	u := &identity.User{
		OrgID:       &orgID,
		GlobalPrefs: map[string]any{"theme": "light", "locale": "en"},
		OrgPrefs:    map[string]any{"theme": "dark"},
	}

	// Org overlay wins key by key; untouched globals survive.
	merged := Effective(u)
	assert.Equal(t, "dark", merged["theme"])
	assert.Equal(t, "en", merged["locale"])

	// The inputs are not mutated.
	assert.Equal(t, "light", u.GlobalPrefs["theme"])

	// Without an organization the overlay is ignored entirely.
	u.OrgID = nil
	assert.Equal(t, "light", Effective(u)["theme"])
}

func TestEffectiveDefaultsTheme(t *testing.T) {
	assert.Equal(t, "default", Effective(&identity.User{})["theme"])

	u := &identity.User{GlobalPrefs: map[string]any{"locale": "de"}}
	merged := Effective(u)
	assert.Equal(t, "default", merged["theme"])
	assert.Equal(t, "de", merged["locale"])
}

func TestUpdateGlobalScope(t *testing.T) {
	svc, users, _ := newPrefsFixture()
	o := org.New("Grace Chapel", "grace")
	o.Plan = "ministry"
	actor := memberOf(o)

	merged, err := svc.Update(context.Background(), actor, o, map[string]any{"theme": "forest", "locale": "en"}, false)
	assert.NoError(t, err)
	assert.Equal(t, "forest", merged["theme"])
	assert.Equal(t, "forest", actor.GlobalPrefs["theme"])
	assert.Empty(t, actor.OrgPrefs)
	assert.Equal(t, []int64{7}, users.updated)
}

func TestUpdateOrgScope(t *testing.T) {
	svc, _, _ := newPrefsFixture()
	o := org.New("Grace Chapel", "grace")
	o.Plan = "ministry"
	actor := memberOf(o)

	merged, err := svc.Update(context.Background(), actor, o, map[string]any{"theme": "ocean"}, true)
	assert.NoError(t, err)
	assert.Equal(t, "ocean", merged["theme"])
	assert.Equal(t, "ocean", actor.OrgPrefs["theme"])
	assert.Empty(t, actor.GlobalPrefs)

	// Org scope without membership is rejected.
	_, err = svc.Update(context.Background(), memberOf(nil), nil, map[string]any{"locale": "en"}, true)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdateThemeValidation(t *testing.T) {
	svc, users, _ := newPrefsFixture()

	// Standalone users validate against the free bundle.
	_, err := svc.Update(context.Background(), memberOf(nil), nil, map[string]any{"theme": "forest"}, false)
	assert.True(t, apperror.IsForbidden(err))

	// The plan's set, not the free set, governs members.
	o := org.New("Grace Chapel", "grace")
	o.Plan = "ministry"
	_, err = svc.Update(context.Background(), memberOf(o), o, map[string]any{"theme": "forest"}, false)
	assert.NoError(t, err)

	_, err = svc.Update(context.Background(), memberOf(o), o, map[string]any{"theme": 42}, false)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "theme must be a string", appErr.Message)

	// Nothing persisted on any rejection.
	assert.Equal(t, []int64{7}, users.updated)
}

func TestUpdateEmptyIsReadOnly(t *testing.T) {
	svc, users, _ := newPrefsFixture()
	actor := memberOf(nil)
	actor.GlobalPrefs = map[string]any{"theme": "dark"}

	merged, err := svc.Update(context.Background(), actor, nil, nil, false)
	assert.NoError(t, err)
	assert.Equal(t, "dark", merged["theme"])
	assert.Empty(t, users.updated)
}

func TestReset(t *testing.T) {
	svc, users, _ := newPrefsFixture()
	o := org.New("Grace Chapel", "grace")
	actor := memberOf(o)
	actor.GlobalPrefs = map[string]any{"theme": "dark"}
	actor.OrgPrefs = map[string]any{"theme": "light", "banner": true}

	merged, err := svc.Reset(context.Background(), actor, true)
	assert.NoError(t, err)
	assert.Empty(t, actor.OrgPrefs)
	// Global layer shows through again.
	assert.Equal(t, "dark", merged["theme"])

	merged, err = svc.Reset(context.Background(), actor, false)
	assert.NoError(t, err)
	assert.Empty(t, actor.GlobalPrefs)
	assert.Equal(t, "default", merged["theme"])
	assert.Equal(t, []int64{7, 7}, users.updated)
}

func TestThemeUsage(t *testing.T) {
	svc, _, analytics := newPrefsFixture()

	o := org.New("Grace Chapel", "grace")
	o.Plan = "ministry"
	counts, err := svc.ThemeUsage(context.Background(), o)
	assert.NoError(t, err)
	assert.Equal(t, analytics.counts, counts)

	// Free tier lacks theme analytics.
	free := org.New("Small Group", "small")
	_, err = svc.ThemeUsage(context.Background(), free)
	assert.True(t, apperror.IsForbidden(err))
}
