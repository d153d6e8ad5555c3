package entitlement

import (
	"fmt"
	"strings"

	"giftworks/internal/core/apperror"
)

// minimumTier returns the lowest plan that grants a boolean feature, used to
// name the required tier in denial messages.
func minimumTier(key Feature) Plan {
	for _, p := range []Plan{PlanFree, PlanIndividual, PlanMinistry, PlanChurch} {
		if bundles[p].BoolFeature(key) {
			return p
		}
	}
	return PlanChurch
}

// RequireFeature denies with Forbidden when the plan's bundle does not grant
// the boolean feature, naming the feature and the tier that would.
func RequireFeature(planName string, key Feature) error {
	b := Resolve(planName)
	if b.BoolFeature(key) {
		return nil
	}
	return apperror.NewForbidden(fmt.Sprintf(
		"%s is not available on the %s plan. Upgrade to the %s tier.",
		featureLabel(key), ParsePlan(planName), minimumTier(key),
	)).WithDetail("feature", string(key)).WithDetail("required_tier", string(minimumTier(key)))
}

// CheckQuota verifies that current usage plus the requested amount fits the
// plan's limit for a quota feature. Unlimited tiers always pass.
func CheckQuota(planName string, key Feature, current, requested int64) error {
	limit := Resolve(planName).LimitFeature(key)
	if limit.Allows(current, requested) {
		return nil
	}
	return apperror.NewQuotaExceeded(fmt.Sprintf(
		"Your %s plan is limited to %d %s. Please upgrade.",
		ParsePlan(planName), limit.Value(), featureLabel(key),
	), limit.Value(), current+requested)
}

// CheckBatchQuota enforces all-or-nothing semantics for bulk operations:
// when the batch exceeds remaining capacity the whole batch is rejected with
// a count-specific message, never partially applied.
func CheckBatchQuota(planName string, key Feature, current, batch int64) error {
	limit := Resolve(planName).LimitFeature(key)
	if limit.Allows(current, batch) {
		return nil
	}
	remaining := limit.Remaining(current)
	return apperror.NewQuotaExceeded(fmt.Sprintf(
		"Tier limit reached. You only have %d slots available, but tried to approve %d users.",
		remaining, batch,
	), limit.Value(), batch)
}

// ValidateTheme checks a theme selection against the plan's theme set.
// The "all" sentinel admits every theme; a literal list rejects anything
// outside it.
func ValidateTheme(planName string, theme string) error {
	set := Resolve(planName).AvailableThemes
	if set.Contains(theme) {
		return nil
	}
	return apperror.NewForbidden(fmt.Sprintf(
		"Theme %q not available on your plan. Available themes: %s",
		theme, strings.Join(set.List(), ", "),
	)).WithDetail("theme", theme)
}

func featureLabel(key Feature) string {
	switch key {
	case FeatureUsers:
		return "members"
	case FeatureAdmins:
		return "admins"
	case FeatureAssessmentsPerMonth:
		return "assessments per month"
	case FeatureHistoryDays:
		return "days of history"
	case FeatureExports:
		return "Exports"
	case FeatureThemeAnalytics:
		return "Theme analytics"
	case FeatureCustomTheming:
		return "Custom theming"
	case FeatureBulkActions:
		return "Bulk member actions"
	case FeatureAuditLogs:
		return "Audit logs"
	case FeatureCustomWeighting:
		return "Custom weighting"
	case FeatureOrgSupport:
		return "Organization support"
	}
	return string(key)
}
