package entitlement

import "math"

// Feature identifies an entry in a plan bundle.
type Feature string

const (
	FeatureUsers               Feature = "users"
	FeatureAdmins              Feature = "admins"
	FeatureAssessmentsPerMonth Feature = "assessments_per_month"
	FeatureHistoryDays         Feature = "history_days"
	FeatureExports             Feature = "exports"
	FeatureOrgSupport          Feature = "org_support"
	FeatureCustomWeighting     Feature = "custom_weighting"
	FeatureSupportLevel        Feature = "support_level"
	FeatureAvailableThemes     Feature = "available_themes"
	FeatureThemeAnalytics      Feature = "theme_analytics"
	FeatureCustomTheming       Feature = "custom_theming"
	FeatureBulkActions         Feature = "bulk_actions"
	FeatureAuditLogs           Feature = "audit_logs"
)

// SupportLevel is the support tier granted by a plan.
type SupportLevel string

const (
	SupportNone     SupportLevel = "none"
	SupportEmail    SupportLevel = "email"
	SupportPriority SupportLevel = "priority"
)

// Limit is a quota value that is either bounded or unlimited.
// Modeled as a tagged value so call sites never compare against a magic number.
type Limit struct {
	n         int64
	unlimited bool
}

// Limited returns a bounded limit of n.
func Limited(n int64) Limit {
	return Limit{n: n}
}

// Unlimited is the sentinel limit that every quota check passes.
var Unlimited = Limit{unlimited: true}

// IsUnlimited reports whether the limit is unbounded.
func (l Limit) IsUnlimited() bool { return l.unlimited }

// Value returns the bound for display purposes. Unlimited limits report -1.
func (l Limit) Value() int64 {
	if l.unlimited {
		return -1
	}
	return l.n
}

// Allows reports whether current usage plus a requested amount fits.
func (l Limit) Allows(current, requested int64) bool {
	if l.unlimited {
		return true
	}
	return current+requested <= l.n
}

// Remaining returns how much capacity is left given current usage.
func (l Limit) Remaining(current int64) int64 {
	if l.unlimited {
		return math.MaxInt64
	}
	if current >= l.n {
		return 0
	}
	return l.n - current
}

// ThemeSet is the set of UI themes a plan may select. The value is either a
// literal list or the "all" sentinel granting every theme.
type ThemeSet struct {
	all    bool
	themes []string
}

// Themes returns a literal theme set.
func Themes(names ...string) ThemeSet {
	return ThemeSet{themes: names}
}

// AllThemes is the sentinel set containing every theme.
var AllThemes = ThemeSet{all: true}

// IsAll reports whether the set is the "all" sentinel.
func (t ThemeSet) IsAll() bool { return t.all }

// Contains reports whether name is permitted.
func (t ThemeSet) Contains(name string) bool {
	if t.all {
		return true
	}
	for _, th := range t.themes {
		if th == name {
			return true
		}
	}
	return false
}

// List returns the literal theme names. Empty for the "all" sentinel.
func (t ThemeSet) List() []string { return t.themes }

// Bundle is the feature/limit set attached to a plan.
type Bundle struct {
	MaxUsers            Limit
	MaxAdmins           Limit
	AssessmentsPerMonth Limit
	HistoryDays         Limit
	Exports             bool
	OrgSupport          bool
	CustomWeighting     bool
	SupportLevel        SupportLevel
	AvailableThemes     ThemeSet
	ThemeAnalytics      bool
	CustomTheming       bool
	BulkActions         bool
	AuditLogs           bool
}

// bundles is the closed, code-defined plan table. Read-only after init, safe
// for concurrent reads.
var bundles = map[Plan]Bundle{
	PlanFree: {
		MaxUsers:            Limited(10),
		MaxAdmins:           Limited(0),
		AssessmentsPerMonth: Limited(20),
		HistoryDays:         Limited(30),
		SupportLevel:        SupportNone,
		AvailableThemes:     Themes("default", "light", "dark"),
	},
	PlanIndividual: {
		MaxUsers:            Limited(50),
		MaxAdmins:           Limited(1),
		AssessmentsPerMonth: Limited(100),
		HistoryDays:         Limited(90),
		SupportLevel:        SupportEmail,
		AvailableThemes:     Themes("default", "light", "dark", "sepia"),
	},
	PlanMinistry: {
		MaxUsers:            Limited(100),
		MaxAdmins:           Limited(5),
		AssessmentsPerMonth: Limited(500),
		HistoryDays:         Limited(365),
		Exports:             true,
		OrgSupport:          true,
		SupportLevel:        SupportPriority,
		AvailableThemes:     Themes("default", "light", "dark", "sepia", "forest", "ocean"),
		ThemeAnalytics:      true,
		BulkActions:         true,
		AuditLogs:           true,
	},
	PlanChurch: {
		MaxUsers:            Unlimited,
		MaxAdmins:           Unlimited,
		AssessmentsPerMonth: Unlimited,
		HistoryDays:         Unlimited,
		Exports:             true,
		OrgSupport:          true,
		CustomWeighting:     true,
		SupportLevel:        SupportPriority,
		AvailableThemes:     AllThemes,
		ThemeAnalytics:      true,
		CustomTheming:       true,
		BulkActions:         true,
		AuditLogs:           true,
	},
}

// Resolve returns the bundle for a plan name. Total: unknown or empty names
// resolve to the free bundle, never to an error.
func Resolve(planName string) Bundle {
	return bundles[ParsePlan(planName)]
}

// BoolFeature reads a boolean feature from the bundle.
// Unknown or non-boolean keys return false rather than failing.
func (b Bundle) BoolFeature(key Feature) bool {
	switch key {
	case FeatureExports:
		return b.Exports
	case FeatureOrgSupport:
		return b.OrgSupport
	case FeatureCustomWeighting:
		return b.CustomWeighting
	case FeatureThemeAnalytics:
		return b.ThemeAnalytics
	case FeatureCustomTheming:
		return b.CustomTheming
	case FeatureBulkActions:
		return b.BulkActions
	case FeatureAuditLogs:
		return b.AuditLogs
	}
	return false
}

// LimitFeature reads a quota feature from the bundle.
// Unknown or non-quota keys return a zero limit rather than failing.
func (b Bundle) LimitFeature(key Feature) Limit {
	switch key {
	case FeatureUsers:
		return b.MaxUsers
	case FeatureAdmins:
		return b.MaxAdmins
	case FeatureAssessmentsPerMonth:
		return b.AssessmentsPerMonth
	case FeatureHistoryDays:
		return b.HistoryDays
	}
	return Limited(0)
}
