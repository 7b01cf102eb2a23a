package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/member"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type memberTableModel struct {
	ID           int64     `db:"id"`
	GroupID      string    `db:"group_public_id"`
	UserID       string    `db:"user_public_id"`
	RegisteredAt time.Time `db:"registered_at"`
	CreatedAt    time.Time `db:"created_at"`
}

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Get(ctx context.Context, groupID, userID string) (member.Membership, bool, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_public_id", userID),
		).
		ToSQL()
	if err != nil {
		return member.Membership{}, false, fmt.Errorf("build get membership query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Membership{}, false, nil
		}
		return member.Membership{}, false, fmt.Errorf("get membership: %w", err)
	}
	return member.Membership{
		GroupID:      row.GroupID,
		UserID:       row.UserID,
		RegisteredAt: row.RegisteredAt,
	}, true, nil
}

func (r *MemberRepository) ListByGroup(ctx context.Context, groupID string) ([]member.Membership, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(qb.Eq("group_public_id", groupID)).
		OrderBy("registered_at", "user_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list memberships query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	out := make([]member.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, member.Membership{
			GroupID:      row.GroupID,
			UserID:       row.UserID,
			RegisteredAt: row.RegisteredAt,
		})
	}
	return out, nil
}
