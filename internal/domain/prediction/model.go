package prediction

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSettled Status = "SETTLED"
)

// Prediction belongs to exactly one (user, match, group) triple.
// Only the settlement path mutates it once created.
type Prediction struct {
	ID          string
	UserID      string
	MatchID     string
	GroupID     string
	Winner      result.Winner
	HomeScore   *int
	AwayScore   *int
	Points      int
	Status      Status
	Provisional bool
	SubmittedAt time.Time
	SettledAt   *time.Time
	Version     int64
}

// HasExactScore reports whether the prediction carries a full score line
// rather than a winner-only pick.
func (p Prediction) HasExactScore() bool {
	return p.HomeScore != nil && p.AwayScore != nil
}
