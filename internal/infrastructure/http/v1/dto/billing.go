package dto

// BillingEvent is the relayed subscription lifecycle event from the payment
// provider's webhook, reduced to the fields the relay needs.
type BillingEvent struct {
	Type string           `json:"type" binding:"required"`
	Data BillingEventData `json:"data"`
}

// BillingEventData is the event payload.
type BillingEventData struct {
	OrgID       string `json:"orgId" binding:"required"`
	PriceID     string `json:"priceId"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}
