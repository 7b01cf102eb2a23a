package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

type predictionTableModel struct {
	ID          int64         `db:"id"`
	PublicID    string        `db:"public_id"`
	UserID      string        `db:"user_public_id"`
	MatchID     string        `db:"match_public_id"`
	GroupID     string        `db:"group_public_id"`
	Winner      string        `db:"winner"`
	HomeScore   sql.NullInt64 `db:"home_score"`
	AwayScore   sql.NullInt64 `db:"away_score"`
	Points      int           `db:"points"`
	Status      string        `db:"status"`
	Provisional bool          `db:"provisional"`
	SubmittedAt time.Time     `db:"submitted_at"`
	SettledAt   sql.NullTime  `db:"settled_at"`
	Version     int64         `db:"version"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type predictionInsertModel struct {
	PublicID    string     `db:"public_id"`
	UserID      string     `db:"user_public_id"`
	MatchID     string     `db:"match_public_id"`
	GroupID     string     `db:"group_public_id"`
	Winner      string     `db:"winner"`
	HomeScore   *int       `db:"home_score"`
	AwayScore   *int       `db:"away_score"`
	Points      int        `db:"points"`
	Status      string     `db:"status"`
	Provisional bool       `db:"provisional"`
	SubmittedAt time.Time  `db:"submitted_at"`
	SettledAt   *time.Time `db:"settled_at"`
	Version     int64      `db:"version"`
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:          row.PublicID,
		UserID:      row.UserID,
		MatchID:     row.MatchID,
		GroupID:     row.GroupID,
		Winner:      result.Winner(row.Winner),
		HomeScore:   nullInt64ToIntPtr(row.HomeScore),
		AwayScore:   nullInt64ToIntPtr(row.AwayScore),
		Points:      row.Points,
		Status:      prediction.Status(row.Status),
		Provisional: row.Provisional,
		SubmittedAt: row.SubmittedAt,
		SettledAt:   nullTimeToTimePtr(row.SettledAt),
		Version:     row.Version,
	}
}

func predictionToInsertModel(pred prediction.Prediction) predictionInsertModel {
	return predictionInsertModel{
		PublicID:    pred.ID,
		UserID:      pred.UserID,
		MatchID:     pred.MatchID,
		GroupID:     pred.GroupID,
		Winner:      string(pred.Winner),
		HomeScore:   pred.HomeScore,
		AwayScore:   pred.AwayScore,
		Points:      pred.Points,
		Status:      string(pred.Status),
		Provisional: pred.Provisional,
		SubmittedAt: pred.SubmittedAt,
		SettledAt:   nullableTime(pred.SettledAt),
		Version:     pred.Version,
	}
}
