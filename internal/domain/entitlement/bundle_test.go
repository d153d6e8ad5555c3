package entitlement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlan(t *testing.T) {
	assert.Equal(t, PlanFree, ParsePlan("free"))
	assert.Equal(t, PlanChurch, ParsePlan("CHURCH"))
	assert.Equal(t, PlanMinistry, ParsePlan("  ministry "))

	// Legacy names map onto current tiers.
	assert.Equal(t, PlanIndividual, ParsePlan("starter"))
	assert.Equal(t, PlanMinistry, ParsePlan("growth"))
	assert.Equal(t, PlanChurch, ParsePlan("enterprise"))

	// Unknown and empty names fall back to free, never error.
	assert.Equal(t, PlanFree, ParsePlan("platinum"))
	assert.Equal(t, PlanFree, ParsePlan(""))
}

func TestResolveIsTotal(t *testing.T) {
	for _, name := range []string{"free", "individual", "ministry", "church", "starter", "growth", "enterprise", "bogus", ""} {
		b := Resolve(name)
		// Every resolution yields a real bundle from the plan table.
		assert.Equal(t, bundles[ParsePlan(name)], b, name)
		assert.True(t, b.AvailableThemes.Contains("default"), name)
	}

	assert.Equal(t, bundles[PlanFree], Resolve("does-not-exist"))
}

func TestLimit(t *testing.T) {
	l := Limited(10)
	assert.False(t, l.IsUnlimited())
	assert.Equal(t, int64(10), l.Value())
	assert.True(t, l.Allows(9, 1))
	assert.False(t, l.Allows(10, 1))
	assert.True(t, l.Allows(0, 10))
	assert.False(t, l.Allows(0, 11))
	assert.Equal(t, int64(3), l.Remaining(7))
	assert.Equal(t, int64(0), l.Remaining(12))

	assert.True(t, Unlimited.IsUnlimited())
	assert.Equal(t, int64(-1), Unlimited.Value())
	assert.True(t, Unlimited.Allows(math.MaxInt64-1, 1))
	assert.Equal(t, int64(math.MaxInt64), Unlimited.Remaining(5))
}

func TestThemeSet(t *testing.T) {
	set := Themes("default", "dark")
	assert.True(t, set.Contains("dark"))
	assert.False(t, set.Contains("sepia"))
	assert.False(t, set.IsAll())

	// The sentinel admits anything, including themes invented tomorrow.
	assert.True(t, AllThemes.Contains("sepia"))
	assert.True(t, AllThemes.Contains("anything-at-all"))
	assert.True(t, AllThemes.IsAll())
	assert.Empty(t, AllThemes.List())
}

func TestBundleFeatureAccess(t *testing.T) {
	free := Resolve("free")
	church := Resolve("church")

	assert.False(t, free.BoolFeature(FeatureBulkActions))
	assert.True(t, church.BoolFeature(FeatureBulkActions))
	assert.True(t, church.LimitFeature(FeatureUsers).IsUnlimited())
	assert.Equal(t, int64(10), free.LimitFeature(FeatureUsers).Value())

	// Unknown keys resolve to deny-by-default values.
	assert.False(t, church.BoolFeature(Feature("no_such_feature")))
	assert.Equal(t, int64(0), church.LimitFeature(Feature("no_such_feature")).Value())

	// Asking for a quota key as a bool (or vice versa) also denies.
	assert.False(t, church.BoolFeature(FeatureUsers))
	assert.Equal(t, int64(0), church.LimitFeature(FeatureBulkActions).Value())
}

func TestTierProgression(t *testing.T) {
	// Each tier must grant at least what the one below grants.
	order := []Plan{PlanFree, PlanIndividual, PlanMinistry, PlanChurch}
	for i := 1; i < len(order); i++ {
		lower, higher := bundles[order[i-1]], bundles[order[i]]
		if !higher.MaxUsers.IsUnlimited() && !lower.MaxUsers.IsUnlimited() {
			assert.GreaterOrEqual(t, higher.MaxUsers.Value(), lower.MaxUsers.Value())
		}
		for _, theme := range lower.AvailableThemes.List() {
			assert.True(t, higher.AvailableThemes.Contains(theme),
				"tier %s lost theme %s", order[i], theme)
		}
	}
}
