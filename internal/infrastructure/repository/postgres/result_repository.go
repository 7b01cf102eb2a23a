package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) Create(ctx context.Context, res result.Result) error {
	query, args, err := qb.InsertModel("match_results", resultToInsertModel(res), "")
	if err != nil {
		return fmt.Errorf("build insert result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert result match=%s: %w", res.MatchID, err)
	}
	return nil
}

func (r *ResultRepository) GetByID(ctx context.Context, resultID string) (result.Result, bool, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("public_id", resultID)).
		ToSQL()
	if err != nil {
		return result.Result{}, false, fmt.Errorf("build get result by id query: %w", err)
	}

	var row resultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return result.Result{}, false, nil
		}
		return result.Result{}, false, fmt.Errorf("get result by id: %w", err)
	}
	return resultFromRow(row), true, nil
}

func (r *ResultRepository) GetByMatch(ctx context.Context, matchID string) (result.Result, bool, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("match_public_id", matchID)).
		ToSQL()
	if err != nil {
		return result.Result{}, false, fmt.Errorf("build get result by match query: %w", err)
	}

	var row resultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return result.Result{}, false, nil
		}
		return result.Result{}, false, fmt.Errorf("get result by match: %w", err)
	}
	return resultFromRow(row), true, nil
}

func (r *ResultRepository) ListByStatus(ctx context.Context, status result.Status) ([]result.Result, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("status", string(status))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list results by status query: %w", err)
	}

	var rows []resultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list results by status: %w", err)
	}

	out := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, resultFromRow(row))
	}
	return out, nil
}

func (r *ResultRepository) Update(ctx context.Context, res result.Result, expectedVersion int64) (result.Result, error) {
	model := resultToInsertModel(res)
	builder := qb.Update("match_results").
		Set("home_score", model.HomeScore).
		Set("away_score", model.AwayScore).
		Set("status", model.Status).
		Set("confirmed_by", model.ConfirmedBy).
		Set("confirmed_at", model.ConfirmedAt).
		Set("dispute_reason", model.DisputeReason).
		Set("dispute_evidence_ref", model.DisputeEvidenceRef).
		Set("dispute_priority", model.DisputePriority).
		Set("dispute_filed_at", model.DisputeFiledAt).
		Set("version", expectedVersion+1).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", res.ID),
			qb.Eq("version", expectedVersion),
		)

	query, args, err := builder.ToSQL()
	if err != nil {
		return result.Result{}, fmt.Errorf("build update result query: %w", err)
	}

	execResult, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return result.Result{}, fmt.Errorf("update result %s: %w", res.ID, err)
	}
	affected, err := execResult.RowsAffected()
	if err != nil {
		return result.Result{}, fmt.Errorf("update result rows affected: %w", err)
	}
	if affected == 0 {
		return result.Result{}, result.ErrVersionConflict
	}

	res.Version = expectedVersion + 1
	return res, nil
}
