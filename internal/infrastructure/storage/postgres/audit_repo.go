package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"giftworks/internal/domain/audit"
)

const auditTable = "audit_logs"

// compressThreshold is the details size above which payloads are stored
// zstd-compressed.
const compressThreshold = 10 * 1024

// CompressionAlgo specifies the compression algorithm used for a row.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditRepo implements audit.Store. Large detail payloads are compressed
// transparently; callers always see plain JSON.
type AuditRepo struct {
	txm     *TxManager
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewAuditRepo creates a new audit repository.
func NewAuditRepo(txm *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{txm: txm, encoder: encoder, decoder: decoder}, nil
}

// Insert stores an audit record through the context's querier, joining the
// caller's transaction when one is active.
func (r *AuditRepo) Insert(ctx context.Context, rec *audit.Record) error {
	q := r.txm.GetQuerier(ctx)

	details := []byte(rec.Details)
	var compressed []byte
	algo := CompressionNone
	if len(details) > compressThreshold {
		compressed = r.encoder.EncodeAll(details, nil)
		details = nil
		algo = CompressionZstd
	}

	query := `
		INSERT INTO audit_logs (
			timestamp, level, actor_id, org_id, action, resource,
			details, details_compressed, compression_algo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		rec.Timestamp, rec.Level, rec.ActorID, rec.OrgID, rec.Action, rec.Resource,
		details, compressed, algo,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}

// List returns a page of audit records matching the filter, newest first,
// plus the total match count for pagination.
func (r *AuditRepo) List(ctx context.Context, f audit.Filter) ([]audit.Record, int64, error) {
	q := r.txm.GetQuerier(ctx)

	where := squirrel.And{}
	if f.OrgID != nil {
		where = append(where, squirrel.Eq{"org_id": *f.OrgID})
	}
	if f.ActorID != nil {
		where = append(where, squirrel.Eq{"actor_id": *f.ActorID})
	}
	if f.Action != "" {
		where = append(where, squirrel.Eq{"action": f.Action})
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	countBuilder := squirrel.Select("COUNT(*)").From(auditTable).PlaceholderFormat(squirrel.Dollar)
	listBuilder := squirrel.
		Select("id", "timestamp", "level", "actor_id", "org_id", "action", "resource",
			"details", "details_compressed", "compression_algo").
		From(auditTable).
		OrderBy("timestamp DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		PlaceholderFormat(squirrel.Dollar)
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
		listBuilder = listBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit records: %w", err)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var rec audit.Record
		var compressed []byte
		var algo CompressionAlgo
		err := rows.Scan(
			&rec.ID, &rec.Timestamp, &rec.Level, &rec.ActorID, &rec.OrgID,
			&rec.Action, &rec.Resource, &rec.Details, &compressed, &algo,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit record: %w", err)
		}

		if algo == CompressionZstd && len(compressed) > 0 {
			decompressed, err := r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, 0, fmt.Errorf("decompress details: %w", err)
			}
			rec.Details = decompressed
		}

		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// Ensure interface compliance
var _ audit.Store = (*AuditRepo)(nil)
