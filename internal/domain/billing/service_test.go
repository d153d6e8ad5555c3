package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/org"
)

type stubTx struct{}

func (stubTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type capturingStore struct {
	records []audit.Record
}

func (c *capturingStore) Insert(_ context.Context, rec *audit.Record) error {
	c.records = append(c.records, *rec)
	return nil
}

func (c *capturingStore) List(context.Context, audit.Filter) ([]audit.Record, int64, error) {
	return nil, 0, nil
}

type stubOrgs struct {
	byID    map[uuid.UUID]*org.Organization
	updated int
}

func (f *stubOrgs) GetByID(_ context.Context, id uuid.UUID) (*org.Organization, error) {
	if o, ok := f.byID[id]; ok {
		return o, nil
	}
	return nil, apperror.NewNotFound("organization", id.String())
}

func (f *stubOrgs) Update(_ context.Context, _ *org.Organization) error {
	f.updated++
	return nil
}

func (f *stubOrgs) Create(context.Context, *org.Organization) error { return nil }

func (f *stubOrgs) GetBySlug(_ context.Context, slug string) (*org.Organization, error) {
	return nil, apperror.NewNotFound("organization", slug)
}

func (f *stubOrgs) SlugExists(context.Context, string) (bool, error) { return false, nil }

func (f *stubOrgs) Search(context.Context, string, int) ([]org.Organization, error) {
	return nil, nil
}

func newBillingFixture(plan string) (*Service, *stubOrgs, *capturingStore, uuid.UUID) {
	o := org.New("Grace Chapel", "grace")
	o.Plan = plan
	orgs := &stubOrgs{byID: map[uuid.UUID]*org.Organization{o.ID: o}}
	store := &capturingStore{}
	prices := ParsePriceMap("price_ind=individual, price_min=ministry ,price_legacy=enterprise")
	return NewService(orgs, prices, audit.NewEmitter(store), stubTx{}), orgs, store, o.ID
}

func TestParsePriceMap(t *testing.T) {
	m := ParsePriceMap("price_123=individual, price_456 = church,broken,=nope,price_789=")
	assert.Equal(t, "individual", m["price_123"])
	// Whitespace around pairs and values is tolerated.
	assert.Contains(t, m, "price_456 ")
	assert.NotContains(t, m, "broken")
	assert.NotContains(t, m, "")
	assert.NotContains(t, m, "price_789")

	assert.Empty(t, ParsePriceMap(""))
}

func TestApplyPriceChange(t *testing.T) {
	svc, orgs, store, orgID := newBillingFixture("free")

	o, err := svc.ApplyPriceChange(context.Background(), orgID, "price_min", 4900, "usd")
	assert.NoError(t, err)
	assert.Equal(t, "ministry", o.Plan)
	assert.Equal(t, 1, orgs.updated)

	if len(store.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(store.records))
	}
	rec := store.records[0]
	assert.Equal(t, int64(0), rec.ActorID) // system action
	assert.Equal(t, "plan_changed", rec.Action)
	assert.Equal(t, &orgID, rec.OrgID)

	var details map[string]any
	assert.NoError(t, json.Unmarshal(rec.Details, &details))
	assert.Equal(t, "free", details["previous_plan"])
	assert.Equal(t, "ministry", details["new_plan"])
	assert.Equal(t, "49.00", details["amount"])
	assert.Equal(t, "usd", details["currency"])
}

func TestApplyPriceChangeLegacyPlanName(t *testing.T) {
	svc, _, _, orgID := newBillingFixture("free")

	// "enterprise" in the price map canonicalizes to church.
	o, err := svc.ApplyPriceChange(context.Background(), orgID, "price_legacy", 9900, "usd")
	assert.NoError(t, err)
	assert.Equal(t, "church", o.Plan)
}

func TestApplyPriceChangeUnknownPrice(t *testing.T) {
	svc, orgs, store, orgID := newBillingFixture("ministry")

	_, err := svc.ApplyPriceChange(context.Background(), orgID, "price_unmapped", 100, "usd")
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, `unknown price "price_unmapped"`, appErr.Message)

	// A misconfigured product never grants or removes entitlements.
	assert.Equal(t, 0, orgs.updated)
	assert.Empty(t, store.records)
	assert.Equal(t, "ministry", orgs.byID[orgID].Plan)
}

func TestApplyPriceChangeSamePlanIsNoOp(t *testing.T) {
	svc, orgs, store, orgID := newBillingFixture("ministry")

	o, err := svc.ApplyPriceChange(context.Background(), orgID, "price_min", 4900, "usd")
	assert.NoError(t, err)
	assert.Equal(t, "ministry", o.Plan)
	assert.Equal(t, 0, orgs.updated)
	assert.Empty(t, store.records)
}

func TestDowngrade(t *testing.T) {
	svc, orgs, store, orgID := newBillingFixture("church")

	o, err := svc.Downgrade(context.Background(), orgID, "subscription_deleted")
	assert.NoError(t, err)
	assert.Equal(t, "free", o.Plan)
	assert.Equal(t, 1, orgs.updated)

	var details map[string]any
	assert.NoError(t, json.Unmarshal(store.records[0].Details, &details))
	assert.Equal(t, "subscription_deleted", details["reason"])
	assert.Equal(t, "church", details["previous_plan"])
	assert.Equal(t, "free", details["new_plan"])
}

func TestDowngradeUnknownOrg(t *testing.T) {
	svc, _, _, _ := newBillingFixture("church")

	_, err := svc.Downgrade(context.Background(), uuid.New(), "x")
	assert.True(t, apperror.IsNotFound(err))
}
