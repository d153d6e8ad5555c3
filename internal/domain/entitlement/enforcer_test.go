package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"giftworks/internal/core/apperror"
)

func TestRequireFeature(t *testing.T) {
	assert.NoError(t, RequireFeature("ministry", FeatureExports))
	assert.NoError(t, RequireFeature("church", FeatureCustomWeighting))

	err := RequireFeature("free", FeatureExports)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))

	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "Exports is not available on the free plan. Upgrade to the ministry tier.", appErr.Message)
	assert.Equal(t, "exports", appErr.Details["feature"])
	assert.Equal(t, "ministry", appErr.Details["required_tier"])

	// Legacy plan names resolve before the grant check.
	assert.NoError(t, RequireFeature("growth", FeatureBulkActions))

	// Unknown plans are treated as free, so gated features deny.
	assert.Error(t, RequireFeature("mystery", FeatureBulkActions))
}

func TestCheckQuota(t *testing.T) {
	// Free allows 10 users: 9 + 1 fits, 10 + 1 does not.
	assert.NoError(t, CheckQuota("free", FeatureUsers, 9, 1))

	err := CheckQuota("free", FeatureUsers, 10, 1)
	assert.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeQuotaExceeded, appErr.Code)
	assert.Equal(t, "Your free plan is limited to 10 members. Please upgrade.", appErr.Message)
	assert.Equal(t, int64(10), appErr.Details["limit"])
	assert.Equal(t, int64(11), appErr.Details["attempted"])

	// Unlimited tiers always pass.
	assert.NoError(t, CheckQuota("church", FeatureUsers, 1_000_000, 1))
}

func TestCheckBatchQuota(t *testing.T) {
	// Individual allows 50 users; 45 used leaves 5 slots.
	assert.NoError(t, CheckBatchQuota("individual", FeatureUsers, 45, 5))

	err := CheckBatchQuota("individual", FeatureUsers, 45, 6)
	assert.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeQuotaExceeded, appErr.Code)
	assert.Equal(t, "Tier limit reached. You only have 5 slots available, but tried to approve 6 users.", appErr.Message)

	// A batch against exhausted capacity reports zero slots.
	err = CheckBatchQuota("free", FeatureUsers, 12, 3)
	appErr, ok = apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "Tier limit reached. You only have 0 slots available, but tried to approve 3 users.", appErr.Message)

	assert.NoError(t, CheckBatchQuota("church", FeatureUsers, 0, 10_000))
}

func TestValidateTheme(t *testing.T) {
	assert.NoError(t, ValidateTheme("free", "dark"))
	assert.NoError(t, ValidateTheme("church", "completely-custom"))

	err := ValidateTheme("free", "sepia")
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, `Theme "sepia" not available on your plan. Available themes: default, light, dark`, appErr.Message)

	assert.NoError(t, ValidateTheme("individual", "sepia"))
}

func TestMinimumTier(t *testing.T) {
	assert.Equal(t, PlanMinistry, minimumTier(FeatureExports))
	assert.Equal(t, PlanMinistry, minimumTier(FeatureBulkActions))
	assert.Equal(t, PlanChurch, minimumTier(FeatureCustomWeighting))
	assert.Equal(t, PlanChurch, minimumTier(FeatureCustomTheming))
}
