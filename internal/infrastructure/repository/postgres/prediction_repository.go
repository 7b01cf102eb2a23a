package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, pred prediction.Prediction) error {
	query, args, err := qb.InsertModel("predictions", predictionToInsertModel(pred), "")
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return prediction.ErrDuplicate
		}
		return fmt.Errorf("insert prediction user=%s match=%s: %w", pred.UserID, pred.MatchID, err)
	}
	return nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, predictionID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("public_id", predictionID)).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction by id query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction by id: %w", err)
	}
	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("match_public_id", matchID))
}

func (r *PredictionRepository) ListPendingByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	return r.list(ctx,
		qb.Eq("match_public_id", matchID),
		qb.Eq("status", string(prediction.StatusPending)),
	)
}

func (r *PredictionRepository) ListSettledByGroup(ctx context.Context, groupID string) ([]prediction.Prediction, error) {
	return r.list(ctx,
		qb.Eq("group_public_id", groupID),
		qb.Eq("status", string(prediction.StatusSettled)),
	)
}

func (r *PredictionRepository) list(ctx context.Context, conditions ...qb.Condition) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

// MarkSettled is the settlement write path. The status guard in the WHERE
// clause is what keeps a second settlement of the same prediction a no-op.
func (r *PredictionRepository) MarkSettled(ctx context.Context, predictionID string, points int, settledAt time.Time) (bool, error) {
	query, args, err := qb.Update("predictions").
		Set("points", points).
		Set("status", string(prediction.StatusSettled)).
		Set("provisional", false).
		Set("settled_at", settledAt.UTC()).
		SetExpr("version", "version + 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", predictionID),
			qb.Eq("status", string(prediction.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark prediction settled query: %w", err)
	}

	execResult, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark prediction settled %s: %w", predictionID, err)
	}
	affected, err := execResult.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark prediction settled rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *PredictionRepository) FlagProvisionalByMatch(ctx context.Context, matchID string, provisional bool) error {
	query, args, err := qb.Update("predictions").
		Set("provisional", provisional).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("status", string(prediction.StatusSettled)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build flag provisional query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("flag provisional predictions match=%s: %w", matchID, err)
	}
	return nil
}

func (r *PredictionRepository) RevertToPendingByMatch(ctx context.Context, matchID string) (int, error) {
	query, args, err := qb.Update("predictions").
		Set("points", 0).
		Set("status", string(prediction.StatusPending)).
		Set("provisional", false).
		Set("settled_at", nil).
		SetExpr("version", "version + 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("match_public_id", matchID),
			qb.Eq("status", string(prediction.StatusSettled)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build revert predictions query: %w", err)
	}

	execResult, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("revert predictions match=%s: %w", matchID, err)
	}
	affected, err := execResult.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revert predictions rows affected: %w", err)
	}
	return int(affected), nil
}
