package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const leaderboardUpsertSuffix = `ON CONFLICT (group_public_id, user_public_id)
DO UPDATE SET
    points = EXCLUDED.points,
    exact_count = EXCLUDED.exact_count,
    winner_count = EXCLUDED.winner_count,
    registered_at = EXCLUDED.registered_at,
    updated_at = NOW()`

type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) GetEntry(ctx context.Context, groupID, userID string) (leaderboard.Entry, bool, error) {
	query, args, err := qb.Select("*").From("leaderboard_entries").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_public_id", userID),
		).
		ToSQL()
	if err != nil {
		return leaderboard.Entry{}, false, fmt.Errorf("build get leaderboard entry query: %w", err)
	}

	var row leaderboardTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return leaderboard.Entry{}, false, nil
		}
		return leaderboard.Entry{}, false, fmt.Errorf("get leaderboard entry: %w", err)
	}
	return leaderboardEntryFromRow(row), true, nil
}

func (r *LeaderboardRepository) UpsertEntry(ctx context.Context, entry leaderboard.Entry) error {
	query, args, err := qb.InsertModel("leaderboard_entries", leaderboardEntryToInsertModel(entry), leaderboardUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert leaderboard entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert leaderboard entry group=%s user=%s: %w", entry.GroupID, entry.UserID, err)
	}
	return nil
}

func (r *LeaderboardRepository) ListByGroup(ctx context.Context, groupID string) ([]leaderboard.Entry, error) {
	query, args, err := qb.Select("*").From("leaderboard_entries").
		Where(qb.Eq("group_public_id", groupID)).
		OrderBy("points DESC", "exact_count DESC", "winner_count DESC", "registered_at", "user_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leaderboard entries query: %w", err)
	}

	var rows []leaderboardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leaderboard entries: %w", err)
	}

	out := make([]leaderboard.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboardEntryFromRow(row))
	}
	return out, nil
}

func (r *LeaderboardRepository) ReplaceByGroup(ctx context.Context, groupID string, entries []leaderboard.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace leaderboard: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery := "DELETE FROM leaderboard_entries WHERE group_public_id = $1"
	if _, err := tx.ExecContext(ctx, deleteQuery, groupID); err != nil {
		return fmt.Errorf("clear leaderboard entries: %w", err)
	}

	for _, entry := range entries {
		query, args, err := qb.InsertModel("leaderboard_entries", leaderboardEntryToInsertModel(entry), "")
		if err != nil {
			return fmt.Errorf("build insert leaderboard entry query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert leaderboard entry user=%s: %w", entry.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace leaderboard tx: %w", err)
	}
	return nil
}
