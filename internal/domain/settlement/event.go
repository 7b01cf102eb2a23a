package settlement

import (
	"context"
	"time"
)

// Event records one prediction reaching SETTLED. The leaderboard
// aggregator and the downstream audit feed both consume it.
type Event struct {
	PredictionID string    `json:"prediction_id"`
	UserID       string    `json:"user_id"`
	GroupID      string    `json:"group_id"`
	MatchID      string    `json:"match_id"`
	ResultID     string    `json:"result_id"`
	Points       int       `json:"points"`
	SettledAt    time.Time `json:"settled_at"`
}

// Publisher delivers settlement event batches to external subscribers.
type Publisher interface {
	PublishBatch(ctx context.Context, events []Event) error
}
