package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"giftworks/internal/core/apperror"
	"giftworks/internal/domain/billing"
	"giftworks/internal/infrastructure/http/v1/dto"
	"giftworks/pkg/logger"
)

// BillingHandler relays subscription webhook events into plan changes.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(base *BaseHandler, service *billing.Service) *BillingHandler {
	return &BillingHandler{BaseHandler: base, service: service}
}

// Webhook handles POST /billing/webhook. Unrecognized event types are
// acknowledged without action so the provider does not retry them forever.
func (h *BillingHandler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()

	var event dto.BillingEvent
	if !h.BindJSON(c, &event) {
		return
	}

	orgID, err := uuid.Parse(event.Data.OrgID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid orgId"))
		return
	}

	switch event.Type {
	case "checkout.session.completed", "customer.subscription.updated":
		if _, err := h.service.ApplyPriceChange(ctx, orgID, event.Data.PriceID, event.Data.AmountCents, event.Data.Currency); err != nil {
			h.Error(c, err)
			return
		}
	case "customer.subscription.deleted":
		if _, err := h.service.Downgrade(ctx, orgID, event.Type); err != nil {
			h.Error(c, err)
			return
		}
	default:
		logger.Info(ctx, "billing_event_ignored", "type", event.Type)
	}

	h.OK(c, gin.H{"received": true})
}
