package survey

import (
	"context"
	"encoding/json"
	"time"

	"giftworks/internal/core/apperror"
	"giftworks/internal/core/tx"
	"giftworks/internal/domain/audit"
	"giftworks/internal/domain/entitlement"
	"giftworks/internal/domain/identity"
	"giftworks/internal/domain/org"
	"giftworks/pkg/logger"
)

// Service meters and records assessments against the organization's plan.
type Service struct {
	subs    Repository
	auditor *audit.Emitter
	txm     tx.Manager
}

func NewService(subs Repository, auditor *audit.Emitter, txm tx.Manager) *Service {
	return &Service{subs: subs, auditor: auditor, txm: txm}
}

// Submit scores and stores an assessment. When the actor belongs to an
// organization the submission counts against the org's monthly assessment
// quota; standalone users are metered on the free bundle against their own
// submissions.
func (s *Service) Submit(ctx context.Context, actor *identity.User, o *org.Organization, answers []Answer) (*Submission, error) {
	if len(answers) == 0 {
		return nil, apperror.NewValidation("answers must not be empty")
	}
	for _, a := range answers {
		if a.Gift == "" {
			return nil, apperror.NewValidation("answer is missing a gift category")
		}
		if a.Value < 0 || a.Value > 5 {
			return nil, apperror.NewValidation("answer values must be between 0 and 5")
		}
	}

	plan := string(entitlement.PlanFree)
	monthStart := startOfMonth(time.Now().UTC())
	if o != nil {
		plan = o.Plan
		used, err := s.subs.CountByOrgSince(ctx, o.ID, monthStart)
		if err != nil {
			return nil, err
		}
		if err := entitlement.CheckQuota(plan, entitlement.FeatureAssessmentsPerMonth, used, 1); err != nil {
			logger.Warn(ctx, "assessment_quota_reached", "org_id", o.ID.String(), "used", used)
			return nil, err
		}
	}

	scores, top := Score(answers)
	rawAnswers, err := json.Marshal(answers)
	if err != nil {
		return nil, apperror.NewValidation("answers are not serializable")
	}
	rawScores, err := json.Marshal(scores)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	sub := &Submission{
		UserID:    actor.ID,
		OrgID:     actor.OrgID,
		Answers:   rawAnswers,
		Scores:    rawScores,
		TopGifts:  top,
		CreatedAt: time.Now().UTC(),
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.subs.Insert(ctx, sub); err != nil {
			return err
		}
		s.auditor.LogAction(ctx, actor, "submit_assessment", "submission", "", map[string]any{
			"top_gifts": top,
			"answers":   len(answers),
		}, audit.LevelInfo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// History returns the actor's own submissions inside the plan's history
// window. Unlimited history returns everything.
func (s *Service) History(ctx context.Context, actor *identity.User, o *org.Organization, limit int) ([]Submission, error) {
	plan := string(entitlement.PlanFree)
	if o != nil {
		plan = o.Plan
	}

	var since time.Time
	if window := entitlement.Resolve(plan).HistoryDays; !window.IsUnlimited() {
		since = time.Now().UTC().AddDate(0, 0, -int(window.Value()))
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.subs.ListByUser(ctx, actor.ID, since, limit)
}

// Export returns the actor's full submissions (answers included) for
// download. Requires the exports entitlement; the caller's organization guard
// runs before the service.
func (s *Service) Export(ctx context.Context, actor *identity.User, o *org.Organization) ([]Submission, error) {
	if o == nil {
		return nil, apperror.NewForbidden("Organization membership required")
	}
	if err := entitlement.RequireFeature(o.Plan, entitlement.FeatureExports); err != nil {
		return nil, err
	}

	var since time.Time
	if window := entitlement.Resolve(o.Plan).HistoryDays; !window.IsUnlimited() {
		since = time.Now().UTC().AddDate(0, 0, -int(window.Value()))
	}
	return s.subs.ListByUser(ctx, actor.ID, since, 1000)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
