// Package survey implements gift assessments: submission, scoring and
// history, all metered by the organization's plan bundle.
package survey

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Submission is one completed assessment.
type Submission struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"userId"`
	OrgID     *uuid.UUID      `db:"org_id" json:"orgId,omitempty"`
	Answers   json.RawMessage `db:"answers" json:"answers"`
	Scores    json.RawMessage `db:"scores" json:"scores"`
	TopGifts  []string        `db:"top_gifts" json:"topGifts"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Answer is a single response: a gift category and a 0-5 agreement value.
type Answer struct {
	Gift  string `json:"gift"`
	Value int    `json:"value"`
}

// topGiftCount is how many leading gifts a result reports.
const topGiftCount = 3

// Score aggregates answers into per-gift percentages and picks the leading
// gifts. Percentages are computed with decimal arithmetic and rounded to two
// places so results are stable across platforms.
func Score(answers []Answer) (map[string]decimal.Decimal, []string) {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, a := range answers {
		sums[a.Gift] = sums[a.Gift].Add(decimal.NewFromInt(int64(a.Value)))
		counts[a.Gift]++
	}

	hundred := decimal.NewFromInt(100)
	maxPerAnswer := decimal.NewFromInt(5)
	scores := make(map[string]decimal.Decimal, len(sums))
	for gift, sum := range sums {
		possible := maxPerAnswer.Mul(decimal.NewFromInt(counts[gift]))
		if possible.IsZero() {
			scores[gift] = decimal.Zero
			continue
		}
		scores[gift] = sum.Div(possible).Mul(hundred).Round(2)
	}

	gifts := make([]string, 0, len(scores))
	for g := range scores {
		gifts = append(gifts, g)
	}
	// Deterministic order: score descending, name ascending on ties.
	sort.Slice(gifts, func(i, j int) bool {
		cmp := scores[gifts[i]].Cmp(scores[gifts[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return gifts[i] < gifts[j]
	})
	if len(gifts) > topGiftCount {
		gifts = gifts[:topGiftCount]
	}
	return scores, gifts
}
