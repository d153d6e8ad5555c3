package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const requestLogTable = "request_logs"

// RequestLog is one HTTP request record, written best-effort by the logging
// middleware and read by the operator log console.
type RequestLog struct {
	ID         int64     `db:"id" json:"id"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	Method     string    `db:"method" json:"method"`
	Path       string    `db:"path" json:"path"`
	Status     int       `db:"status" json:"status"`
	DurationMS int64     `db:"duration_ms" json:"durationMs"`
	UserID     *int64    `db:"user_id" json:"userId,omitempty"`
	UserEmail  string    `db:"user_email" json:"userEmail,omitempty"`
	TraceID    string    `db:"trace_id" json:"traceId,omitempty"`
	ClientIP   string    `db:"client_ip" json:"clientIp,omitempty"`
}

// RequestLogFilter narrows the operator log listing.
type RequestLogFilter struct {
	Method    string
	Path      string
	MinStatus int
	Limit     int
}

// RequestLogRepo persists request logs.
type RequestLogRepo struct {
	txm *TxManager
}

// NewRequestLogRepo creates a new request log repository.
func NewRequestLogRepo(txm *TxManager) *RequestLogRepo {
	return &RequestLogRepo{txm: txm}
}

// Insert stores one request record. Callers treat failures as non-fatal.
func (r *RequestLogRepo) Insert(ctx context.Context, rec *RequestLog) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO request_logs (
			timestamp, method, path, status, duration_ms,
			user_id, user_email, trace_id, client_ip
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		rec.Timestamp, rec.Method, rec.Path, rec.Status, rec.DurationMS,
		rec.UserID, rec.UserEmail, rec.TraceID, rec.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}

// List returns recent request logs matching the filter, newest first.
func (r *RequestLogRepo) List(ctx context.Context, f RequestLogFilter) ([]RequestLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	builder := squirrel.
		Select("id", "timestamp", "method", "path", "status", "duration_ms",
			"user_id", "user_email", "trace_id", "client_ip").
		From(requestLogTable).
		OrderBy("timestamp DESC", "id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if f.Method != "" {
		builder = builder.Where(squirrel.Eq{"method": f.Method})
	}
	if f.Path != "" {
		builder = builder.Where(squirrel.ILike{"path": "%" + f.Path + "%"})
	}
	if f.MinStatus > 0 {
		builder = builder.Where(squirrel.GtOrEq{"status": f.MinStatus})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var logs []RequestLog
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &logs, query, args...); err != nil {
		return nil, fmt.Errorf("query request logs: %w", err)
	}
	return logs, nil
}
