package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"giftworks/internal/domain/identity"
	"giftworks/pkg/logger"
)

// Emitter stages audit records on the caller's unit of work. It never commits
// independently and never propagates failures: an audit hiccup must not block
// the action it documents.
type Emitter struct {
	store Store
}

// NewEmitter creates an Emitter.
func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store}
}

// LogAction records one privileged action performed by actor. The record is
// written through the store's querier, which joins the active transaction
// when one is bound to ctx. Serialization problems degrade to an empty
// details object; storage errors are logged and swallowed.
func (e *Emitter) LogAction(ctx context.Context, actor *identity.User, action, targetType, targetID string, details map[string]any, level Level) {
	if level == "" {
		level = LevelInfo
	}

	rec := &Record{
		Timestamp: time.Now().UTC(),
		Level:     level,
		ActorID:   actor.ID,
		OrgID:     actor.OrgID,
		Action:    action,
		Resource:  fmt.Sprintf("%s:%s", targetType, targetID),
		Details:   marshalDetails(details),
	}

	if err := e.store.Insert(ctx, rec); err != nil {
		logger.Error(ctx, "audit_write_failed", "action", action, "resource", rec.Resource, "error", err)
	}
}

// LogSystemAction records an action performed by the platform itself (billing
// relay, scheduled jobs) where no authenticated user is acting. Actor ID zero
// marks the system.
func (e *Emitter) LogSystemAction(ctx context.Context, orgID *uuid.UUID, action, targetType, targetID string, details map[string]any, level Level) {
	if level == "" {
		level = LevelInfo
	}

	rec := &Record{
		Timestamp: time.Now().UTC(),
		Level:     level,
		OrgID:     orgID,
		Action:    action,
		Resource:  fmt.Sprintf("%s:%s", targetType, targetID),
		Details:   marshalDetails(details),
	}

	if err := e.store.Insert(ctx, rec); err != nil {
		logger.Error(ctx, "audit_write_failed", "action", action, "resource", rec.Resource, "error", err)
	}
}

// marshalDetails coerces a details payload into JSON. Values that do not
// serialize are replaced by their string form; if even that fails, the
// details degrade to an empty object rather than an error.
func marshalDetails(details map[string]any) json.RawMessage {
	if details == nil {
		return json.RawMessage("{}")
	}
	raw, err := json.Marshal(details)
	if err == nil {
		return raw
	}

	safe := make(map[string]any, len(details))
	for k, v := range details {
		if _, err := json.Marshal(v); err != nil {
			safe[k] = fmt.Sprintf("%v", v)
		} else {
			safe[k] = v
		}
	}
	raw, err = json.Marshal(safe)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}
