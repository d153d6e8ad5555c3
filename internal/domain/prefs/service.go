// Package prefs manages user preferences: a global layer with an optional
// per-organization overlay, theme selection gated by the plan's theme set,
// and aggregate theme analytics for entitled organizations.
package prefs

import (
	"context"

	"github.com/google/uuid"

	"giftworks/internal/core/apperror"
	"giftworks/internal/core/tx"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/entitlement"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
)

// themeKey is the preference key validated against the plan's theme set.
const themeKey = "theme"

// defaultTheme is what an unset theme resolves to.
const defaultTheme = "default"

// Analytics aggregates preference data across an organization's members.
type Analytics interface {
	// ThemeCounts returns how many members of the organization have each
	// theme selected, defaulted themes included under "default".
	ThemeCounts(ctx context.Context, orgID uuid.UUID) (map[string]int64, error)
}

// Service reads and mutates user preferences.
type Service struct {
	users     identity.Repository
	analytics Analytics
	auditor   *audit.Emitter
	txm       tx.Manager
}

func NewService(users identity.Repository, analytics Analytics, auditor *audit.Emitter, txm tx.Manager) *Service {
	return &Service{users: users, analytics: analytics, auditor: auditor, txm: txm}
}

// Effective merges the user's global preferences with the org overlay.
// Org-scoped values win key by key; neither input map is mutated.
func Effective(u *identity.User) map[string]any {
	merged := make(map[string]any, len(u.GlobalPrefs)+len(u.OrgPrefs))
	for k, v := range u.GlobalPrefs {
		merged[k] = v
	}
	if u.OrgID != nil {
		for k, v := range u.OrgPrefs {
			merged[k] = v
		}
	}
	if _, ok := merged[themeKey]; !ok {
		merged[themeKey] = defaultTheme
	}
	return merged
}

// Update applies preference changes to the chosen scope. A theme change is
// validated against the organization's plan (the free bundle for standalone
// users). orgScope writes require membership in an organization.
func (s *Service) Update(ctx context.Context, actor *identity.User, o *org.Organization, updates map[string]any, orgScope bool) (map[string]any, error) {
	if len(updates) == 0 {
		return Effective(actor), nil
	}
	if orgScope && actor.OrgID == nil {
		return nil, apperror.NewValidation("organization-scoped preferences require organization membership")
	}

	if raw, ok := updates[themeKey]; ok {
		theme, ok := raw.(string)
		if !ok {
			return nil, apperror.NewValidation("theme must be a string")
		}
		plan := string(entitlement.PlanFree)
		if o != nil {
			plan = o.Plan
		}
		if err := entitlement.ValidateTheme(plan, theme); err != nil {
			return nil, err
		}
	}

	target := &actor.GlobalPrefs
	if orgScope {
		target = &actor.OrgPrefs
	}
	if *target == nil {
		*target = make(map[string]any, len(updates))
	}
	for k, v := range updates {
		(*target)[k] = v
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Update(ctx, actor); err != nil {
			return err
		}
		keys := make([]string, 0, len(updates))
		for k := range updates {
			keys = append(keys, k)
		}
		s.auditor.LogAction(ctx, actor, "update_preferences", "user", "", map[string]any{
			"keys":      keys,
			"org_scope": orgScope,
		}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Effective(actor), nil
}

// Reset clears the chosen scope back to defaults.
func (s *Service) Reset(ctx context.Context, actor *identity.User, orgScope bool) (map[string]any, error) {
	if orgScope {
		actor.OrgPrefs = map[string]any{}
	} else {
		actor.GlobalPrefs = map[string]any{}
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Update(ctx, actor); err != nil {
			return err
		}
		s.auditor.LogAction(ctx, actor, "reset_preferences", "user", "", map[string]any{
			"org_scope": orgScope,
		}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Effective(actor), nil
}

// ThemeUsage reports theme adoption across the organization. Gated by the
// theme-analytics entitlement; the org-admin guard runs before the service.
func (s *Service) ThemeUsage(ctx context.Context, o *org.Organization) (map[string]int64, error) {
	if err := entitlement.RequireFeature(o.Plan, entitlement.FeatureThemeAnalytics); err != nil {
		return nil, err
	}
	return s.analytics.ThemeCounts(ctx, o.ID)
}
