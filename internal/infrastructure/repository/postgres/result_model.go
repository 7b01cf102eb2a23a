package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

type resultTableModel struct {
	ID                 int64          `db:"id"`
	PublicID           string         `db:"public_id"`
	MatchID            string         `db:"match_public_id"`
	HomeScore          int            `db:"home_score"`
	AwayScore          int            `db:"away_score"`
	Status             string         `db:"status"`
	ConfirmedBy        sql.NullString `db:"confirmed_by"`
	ConfirmedAt        sql.NullTime   `db:"confirmed_at"`
	DisputeReason      sql.NullString `db:"dispute_reason"`
	DisputeEvidenceRef sql.NullString `db:"dispute_evidence_ref"`
	DisputePriority    sql.NullString `db:"dispute_priority"`
	DisputeFiledAt     sql.NullTime   `db:"dispute_filed_at"`
	Version            int64          `db:"version"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

type resultInsertModel struct {
	PublicID           string     `db:"public_id"`
	MatchID            string     `db:"match_public_id"`
	HomeScore          int        `db:"home_score"`
	AwayScore          int        `db:"away_score"`
	Status             string     `db:"status"`
	ConfirmedBy        *string    `db:"confirmed_by"`
	ConfirmedAt        *time.Time `db:"confirmed_at"`
	DisputeReason      *string    `db:"dispute_reason"`
	DisputeEvidenceRef *string    `db:"dispute_evidence_ref"`
	DisputePriority    *string    `db:"dispute_priority"`
	DisputeFiledAt     *time.Time `db:"dispute_filed_at"`
	Version            int64      `db:"version"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func resultFromRow(row resultTableModel) result.Result {
	res := result.Result{
		ID:          row.PublicID,
		MatchID:     row.MatchID,
		HomeScore:   row.HomeScore,
		AwayScore:   row.AwayScore,
		Status:      result.Status(row.Status),
		ConfirmedBy: nullStringToString(row.ConfirmedBy),
		ConfirmedAt: nullTimeToTimePtr(row.ConfirmedAt),
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.DisputeReason.Valid {
		res.Dispute = &result.Dispute{
			Reason:      row.DisputeReason.String,
			EvidenceRef: nullStringToString(row.DisputeEvidenceRef),
			Priority:    result.DisputePriority(nullStringToString(row.DisputePriority)),
			FiledAt:     row.DisputeFiledAt.Time,
		}
	}
	return res
}

func resultToInsertModel(res result.Result) resultInsertModel {
	model := resultInsertModel{
		PublicID:    res.ID,
		MatchID:     res.MatchID,
		HomeScore:   res.HomeScore,
		AwayScore:   res.AwayScore,
		Status:      string(res.Status),
		ConfirmedBy: nullableString(res.ConfirmedBy),
		ConfirmedAt: nullableTime(res.ConfirmedAt),
		Version:     res.Version,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
	if res.Dispute != nil {
		model.DisputeReason = nullableString(res.Dispute.Reason)
		model.DisputeEvidenceRef = nullableString(res.Dispute.EvidenceRef)
		model.DisputePriority = nullableString(string(res.Dispute.Priority))
		filedAt := res.Dispute.FiledAt
		model.DisputeFiledAt = nullableTime(&filedAt)
	}
	return model
}
