package httpapi

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

type resultDTO struct {
	ID          string      `json:"id"`
	MatchID     string      `json:"match_id"`
	HomeScore   int         `json:"home_score"`
	AwayScore   int         `json:"away_score"`
	Status      string      `json:"status"`
	ConfirmedBy string      `json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time  `json:"confirmed_at,omitempty"`
	Dispute     *disputeDTO `json:"dispute,omitempty"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type disputeDTO struct {
	Reason      string    `json:"reason"`
	EvidenceRef string    `json:"evidence_ref"`
	Priority    string    `json:"priority"`
	FiledAt     time.Time `json:"filed_at"`
}

func resultToDTO(res result.Result) resultDTO {
	dto := resultDTO{
		ID:          res.ID,
		MatchID:     res.MatchID,
		HomeScore:   res.HomeScore,
		AwayScore:   res.AwayScore,
		Status:      string(res.Status),
		ConfirmedBy: res.ConfirmedBy,
		ConfirmedAt: res.ConfirmedAt,
		Version:     res.Version,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
	if res.Dispute != nil {
		dto.Dispute = &disputeDTO{
			Reason:      res.Dispute.Reason,
			EvidenceRef: res.Dispute.EvidenceRef,
			Priority:    string(res.Dispute.Priority),
			FiledAt:     res.Dispute.FiledAt,
		}
	}
	return dto
}

type predictionDTO struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	MatchID     string     `json:"match_id"`
	GroupID     string     `json:"group_id"`
	Winner      string     `json:"winner"`
	HomeScore   *int       `json:"home_score,omitempty"`
	AwayScore   *int       `json:"away_score,omitempty"`
	Points      int        `json:"points"`
	Status      string     `json:"status"`
	Provisional bool       `json:"provisional"`
	SubmittedAt time.Time  `json:"submitted_at"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

func predictionToDTO(pred prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:          pred.ID,
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
		SettledAt:   pred.SettledAt,
	}
}

type leaderboardEntryDTO struct {
	Rank         int       `json:"rank"`
	UserID       string    `json:"user_id"`
	Points       int       `json:"points"`
	ExactCount   int       `json:"exact_count"`
	WinnerCount  int       `json:"winner_count"`
	RegisteredAt time.Time `json:"registered_at"`
}

func leaderboardEntryToDTO(entry leaderboard.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		Rank:         entry.Rank,
		UserID:       entry.UserID,
		Points:       entry.Points,
		ExactCount:   entry.ExactCount,
		WinnerCount:  entry.WinnerCount,
		RegisteredAt: entry.RegisteredAt,
	}
}
