package dto

import (
	"encoding/json"
	"time"

	"giftworks/internal/domain/audit"
)

// AuditRecordResponse is one audit trail entry.
type AuditRecordResponse struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	ActorID   int64           `json:"actorId"`
	OrgID     string          `json:"orgId,omitempty"`
	Action    string          `json:"action"`
	Resource  string          `json:"resource"`
	Details   json.RawMessage `json:"details"`
}

// FromAuditRecord maps a domain audit record.
func FromAuditRecord(r *audit.Record) AuditRecordResponse {
	resp := AuditRecordResponse{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Level:     string(r.Level),
		ActorID:   r.ActorID,
		Action:    r.Action,
		Resource:  r.Resource,
		Details:   r.Details,
	}
	if r.OrgID != nil {
		resp.OrgID = r.OrgID.String()
	}
	return resp
}

// FromAuditRecords maps a slice of domain audit records.
func FromAuditRecords(records []audit.Record) []AuditRecordResponse {
	out := make([]AuditRecordResponse, len(records))
	for i := range records {
		out[i] = FromAuditRecord(&records[i])
	}
	return out
}
