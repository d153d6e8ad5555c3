package survey

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists assessment submissions.
type Repository interface {
	// Insert stores a new submission.
	Insert(ctx context.Context, sub *Submission) error

	// ListByUser returns the user's submissions created at or after since,
	// newest first. A zero since returns everything.
	ListByUser(ctx context.Context, userID int64, since time.Time, limit int) ([]Submission, error)

	// CountByOrgSince counts submissions attributed to the organization
	// created at or after since. Backs the monthly assessment quota.
	CountByOrgSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error)
}
