package postgres

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
)

type leaderboardTableModel struct {
	ID           int64     `db:"id"`
	GroupID      string    `db:"group_public_id"`
	UserID       string    `db:"user_public_id"`
	Points       int       `db:"points"`
	ExactCount   int       `db:"exact_count"`
	WinnerCount  int       `db:"winner_count"`
	RegisteredAt time.Time `db:"registered_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type leaderboardInsertModel struct {
	GroupID      string    `db:"group_public_id"`
	UserID       string    `db:"user_public_id"`
	Points       int       `db:"points"`
	ExactCount   int       `db:"exact_count"`
	WinnerCount  int       `db:"winner_count"`
	RegisteredAt time.Time `db:"registered_at"`
}

func leaderboardEntryFromRow(row leaderboardTableModel) leaderboard.Entry {
	return leaderboard.Entry{
		GroupID:      row.GroupID,
		UserID:       row.UserID,
		Points:       row.Points,
		ExactCount:   row.ExactCount,
		WinnerCount:  row.WinnerCount,
		RegisteredAt: row.RegisteredAt,
	}
}

func leaderboardEntryToInsertModel(entry leaderboard.Entry) leaderboardInsertModel {
	return leaderboardInsertModel{
		GroupID:      entry.GroupID,
		UserID:       entry.UserID,
		Points:       entry.Points,
		ExactCount:   entry.ExactCount,
		WinnerCount:  entry.WinnerCount,
		RegisteredAt: entry.RegisteredAt.UTC(),
	}
}
