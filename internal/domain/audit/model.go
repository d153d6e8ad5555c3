// Package audit records every privileged decision and mutation as an
// immutable trail tied to the resolved actor and organization.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Level classifies an audit record.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Record is one append-only audit row. Resource is composed as
// "{targetType}:{targetId}".
type Record struct {
	ID        int64           `db:"id" json:"id"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
	Level     Level           `db:"level" json:"level"`
	ActorID   int64           `db:"actor_id" json:"actorId"`
	OrgID     *uuid.UUID      `db:"org_id" json:"orgId,omitempty"`
	Action    string          `db:"action" json:"action"`
	Resource  string          `db:"resource" json:"resource"`
	Details   json.RawMessage `db:"details" json:"details"`
}

// Filter narrows audit log listings.
type Filter struct {
	OrgID   *uuid.UUID
	ActorID *int64
	Action  string
	Page    int
	Limit   int
}

// Store persists audit records. Insert must stage the record on the caller's
// transaction when one is active, so the record and the action it documents
// commit or roll back together.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	List(ctx context.Context, f Filter) ([]Record, int64, error)
}
