package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"giftworks/internal/domain/identity"
)

type recordingStore struct {
	records []Record
	err     error
}

func (s *recordingStore) Insert(_ context.Context, rec *Record) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *rec)
	return nil
}

func (s *recordingStore) List(context.Context, Filter) ([]Record, int64, error) {
	return nil, 0, nil
}

func TestLogAction(t *testing.T) {
	store := &recordingStore{}
	e := NewEmitter(store)

	orgID := uuid.New()
	actor := &identity.User{ID: 42, Email: "admin@example.com", OrgID: &orgID}

	e.LogAction(context.Background(), actor, "approve_member", "user", "7",
		map[string]any{"email": "new@example.com"}, LevelInfo)

	if len(store.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.records))
	}
	rec := store.records[0]
	assert.Equal(t, int64(42), rec.ActorID)
	assert.Equal(t, &orgID, rec.OrgID)
	assert.Equal(t, "approve_member", rec.Action)
	assert.Equal(t, "user:7", rec.Resource)
	assert.Equal(t, LevelInfo, rec.Level)
	assert.False(t, rec.Timestamp.IsZero())

	var details map[string]any
	assert.NoError(t, json.Unmarshal(rec.Details, &details))
	assert.Equal(t, "new@example.com", details["email"])
}

func TestLogActionDefaultsLevel(t *testing.T) {
	store := &recordingStore{}
	e := NewEmitter(store)

	e.LogAction(context.Background(), &identity.User{ID: 1}, "x", "y", "z", nil, "")
	assert.Equal(t, LevelInfo, store.records[0].Level)
	assert.Equal(t, json.RawMessage("{}"), store.records[0].Details)
}

func TestLogSystemAction(t *testing.T) {
	store := &recordingStore{}
	e := NewEmitter(store)

	orgID := uuid.New()
	e.LogSystemAction(context.Background(), &orgID, "plan_changed", "organization", orgID.String(),
		map[string]any{"previous_plan": "free", "new_plan": "ministry"}, LevelInfo)

	rec := store.records[0]
	assert.Equal(t, int64(0), rec.ActorID)
	assert.Equal(t, &orgID, rec.OrgID)
	assert.Equal(t, "plan_changed", rec.Action)
}

func TestStoreFailureIsSwallowed(t *testing.T) {
	store := &recordingStore{err: errors.New("connection refused")}
	e := NewEmitter(store)

	// Must not panic and must not surface the error to the caller.
	e.LogAction(context.Background(), &identity.User{ID: 1}, "x", "y", "z", nil, LevelError)
	e.LogSystemAction(context.Background(), nil, "x", "y", "z", nil, LevelError)
	assert.Empty(t, store.records)
}

func TestMarshalDetailsCoercesUnserializable(t *testing.T) {
	raw := marshalDetails(map[string]any{
		"ok":  "value",
		"bad": func() {}, // functions do not serialize
	})

	var details map[string]any
	assert.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, "value", details["ok"])
	// The offending value degrades to its string form instead of dropping the record.
	assert.Contains(t, details, "bad")

	assert.Equal(t, json.RawMessage("{}"), marshalDetails(nil))
}
