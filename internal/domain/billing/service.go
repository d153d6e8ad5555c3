// Package billing relays subscription lifecycle events from the payment
// provider into plan changes. The provider is the source of truth for what
// was purchased; this service only maps prices to plans and applies them.
package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"giftworks/internal/core/apperror"
	"giftworks/internal/core/tx"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/entitlement"
	"giftworks/internal/domain/org"
	"giftworks/pkg/logger"
)

// PriceMap maps provider price identifiers to plan names. Values may use
// legacy plan names; they are canonicalized on apply.
type PriceMap map[string]string

// ParsePriceMap parses "price_123=individual,price_456=church" from config.
func ParsePriceMap(raw string) PriceMap {
	m := PriceMap{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		m[k] = strings.TrimSpace(v)
	}
	return m
}

// Service applies subscription events to organizations.
type Service struct {
	orgs    org.Repository
	prices  PriceMap
	auditor *audit.Emitter
	txm     tx.Manager
}

func NewService(orgs org.Repository, prices PriceMap, auditor *audit.Emitter, txm tx.Manager) *Service {
	return &Service{orgs: orgs, prices: prices, auditor: auditor, txm: txm}
}

// ApplyPriceChange moves the organization to the plan mapped from priceID.
// Unknown prices are rejected so a misconfigured product can never silently
// grant entitlements. amountCents is recorded for the audit trail only.
func (s *Service) ApplyPriceChange(ctx context.Context, orgID uuid.UUID, priceID string, amountCents int64, currency string) (*org.Organization, error) {
	planName, ok := s.prices[priceID]
	if !ok {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown price %q", priceID))
	}
	return s.applyPlan(ctx, orgID, entitlement.ParsePlan(planName), map[string]any{
		"price_id": priceID,
		"amount":   decimal.NewFromInt(amountCents).Div(decimal.NewFromInt(100)).StringFixed(2),
		"currency": currency,
	})
}

// Downgrade drops the organization back to the free plan after a cancelled
// or expired subscription.
func (s *Service) Downgrade(ctx context.Context, orgID uuid.UUID, reason string) (*org.Organization, error) {
	return s.applyPlan(ctx, orgID, entitlement.PlanFree, map[string]any{
		"reason": reason,
	})
}

func (s *Service) applyPlan(ctx context.Context, orgID uuid.UUID, plan entitlement.Plan, details map[string]any) (*org.Organization, error) {
	o, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	previous := entitlement.ParsePlan(o.Plan)
	if previous == plan {
		return o, nil
	}

	details["previous_plan"] = string(previous)
	details["new_plan"] = string(plan)

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		o.Plan = string(plan)
		if err := s.orgs.Update(ctx, o); err != nil {
			return err
		}
		s.auditor.LogSystemAction(ctx, &o.ID, "plan_changed", "organization", o.ID.String(), details, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "plan_changed", "org_id", o.ID.String(), "from", string(previous), "to", string(plan))
	return o, nil
}
