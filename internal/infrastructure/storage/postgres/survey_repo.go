package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"giftworks/internal/domain/survey"
)

const submissionTable = "submissions"

// SurveyRepo implements survey.Repository.
type SurveyRepo struct {
	txm *TxManager
}

// NewSurveyRepo creates a new submission repository.
func NewSurveyRepo(txm *TxManager) *SurveyRepo {
	return &SurveyRepo{txm: txm}
}

// Insert stores a new submission and backfills the generated ID.
func (r *SurveyRepo) Insert(ctx context.Context, sub *survey.Submission) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO submissions (
			user_id, org_id, answers, scores, top_gifts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		sub.UserID, sub.OrgID, sub.Answers, sub.Scores, sub.TopGifts, sub.CreatedAt,
	).Scan(&sub.ID)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	return nil
}

// ListByUser returns the user's submissions created at or after since,
// newest first.
func (r *SurveyRepo) ListByUser(ctx context.Context, userID int64, since time.Time, limit int) ([]survey.Submission, error) {
	builder := squirrel.
		Select("id", "user_id", "org_id", "answers", "scores", "top_gifts", "created_at").
		From(submissionTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if !since.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"created_at": since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var subs []survey.Submission
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &subs, query, args...); err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	return subs, nil
}

// CountByOrgSince counts submissions for the organization created at or
// after since.
func (r *SurveyRepo) CountByOrgSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	q := r.txm.GetQuerier(ctx)

	query := `SELECT COUNT(*) FROM submissions WHERE org_id = $1 AND created_at >= $2`

	var count int64
	if err := q.QueryRow(ctx, query, orgID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return count, nil
}

// Ensure interface compliance
var _ survey.Repository = (*SurveyRepo)(nil)
