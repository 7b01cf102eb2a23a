package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

// OverdueSettlement flags a prediction still pending past the SLA after
// its result was confirmed. The engine never drops settlements silently;
// any row reported here means a settle run needs to be re-driven.
type OverdueSettlement struct {
	PredictionID string        `json:"prediction_id"`
	MatchID      string        `json:"match_id"`
	ResultID     string        `json:"result_id"`
	ConfirmedAt  time.Time     `json:"confirmed_at"`
	Overdue      time.Duration `json:"overdue"`
}

// ListOverdueSettlements scans confirmed results for predictions that
// should have settled by now.
func (s *SettlementService) ListOverdueSettlements(ctx context.Context, sla time.Duration) ([]OverdueSettlement, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.ListOverdueSettlements")
	defer span.End()

	if sla <= 0 {
		return nil, fmt.Errorf("%w: settlement SLA must be positive", ErrInvalidConfig)
	}

	confirmed, err := s.resultRepo.ListByStatus(ctx, result.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list confirmed results: %w", err)
	}

	now := s.now().UTC()
	out := make([]OverdueSettlement, 0)
	for _, res := range confirmed {
		if res.ConfirmedAt == nil {
			continue
		}
		deadline := res.ConfirmedAt.Add(sla)
		if now.Before(deadline) {
			continue
		}

		pending, err := s.predictionRepo.ListPendingByMatch(ctx, res.MatchID)
		if err != nil {
			return nil, fmt.Errorf("list pending predictions match=%s: %w", res.MatchID, err)
		}
		for _, pred := range pending {
			out = append(out, OverdueSettlement{
				PredictionID: pred.ID,
				MatchID:      res.MatchID,
				ResultID:     res.ID,
				ConfirmedAt:  *res.ConfirmedAt,
				Overdue:      now.Sub(deadline),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Overdue != out[j].Overdue {
			return out[i].Overdue > out[j].Overdue
		}
		return out[i].PredictionID < out[j].PredictionID
	})
	return out, nil
}
