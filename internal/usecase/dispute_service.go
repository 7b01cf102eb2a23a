package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// DisputeService handles the CONFIRMED -> DISPUTED branch of the result
// lifecycle. Filing a dispute freezes settlement for that result; the
// predictions already settled against it stay settled but are flagged
// provisional until the dispute resolves.
type DisputeService struct {
	resultRepo     result.Repository
	predictionRepo prediction.Repository
	settlement     *SettlementService
	leaderboard    *LeaderboardService
	logger         *logging.Logger
	now            func() time.Time
}

type DisputeDecision struct {
	Upheld    bool
	HomeScore int
	AwayScore int
}

func NewDisputeService(
	resultRepo result.Repository,
	predictionRepo prediction.Repository,
	settlement *SettlementService,
	leaderboard *LeaderboardService,
	logger *logging.Logger,
) *DisputeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DisputeService{
		resultRepo:     resultRepo,
		predictionRepo: predictionRepo,
		settlement:     settlement,
		leaderboard:    leaderboard,
		logger:         logger,
		now:            time.Now,
	}
}

// FileDispute moves CONFIRMED -> DISPUTED. Requires an evidence
// reference; bare complaints are rejected.
func (s *DisputeService) FileDispute(ctx context.Context, resultID, reason, evidenceRef string, priority result.DisputePriority) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DisputeService.FileDispute")
	defer span.End()

	if strings.TrimSpace(evidenceRef) == "" {
		return result.Result{}, fmt.Errorf("%w: dispute requires an evidence reference", ErrInvalidInput)
	}

	res, err := s.loadResult(ctx, resultID)
	if err != nil {
		return result.Result{}, err
	}

	switch res.Status {
	case result.StatusConfirmed:
	case result.StatusResolved:
		return result.Result{}, fmt.Errorf("%w: result %s", ErrResultFinalized, resultID)
	default:
		return result.Result{}, fmt.Errorf("%w: disputes require a confirmed result, got %s", ErrInvalidResultState, res.Status)
	}

	now := s.now().UTC()
	res.Status = result.StatusDisputed
	res.Dispute = &result.Dispute{
		Reason:      strings.TrimSpace(reason),
		EvidenceRef: strings.TrimSpace(evidenceRef),
		Priority:    result.NormalizePriority(priority),
		FiledAt:     now,
	}
	res.UpdatedAt = now

	updated, err := s.resultRepo.Update(ctx, res, res.Version)
	if err != nil {
		if errors.Is(err, result.ErrVersionConflict) {
			return result.Result{}, fmt.Errorf("%w: result %s changed concurrently", ErrInvalidResultState, resultID)
		}
		return result.Result{}, fmt.Errorf("dispute result %s: %w", resultID, err)
	}

	// Settled points stay on the board until resolution, but readers can
	// see they are contested.
	if err := s.predictionRepo.FlagProvisionalByMatch(ctx, res.MatchID, true); err != nil {
		return result.Result{}, fmt.Errorf("flag provisional predictions match=%s: %w", res.MatchID, err)
	}

	s.logger.InfoContext(ctx, "dispute filed",
		"result_id", resultID, "priority", string(updated.Dispute.Priority), "evidence_ref", updated.Dispute.EvidenceRef)
	return updated, nil
}

// Resolve closes a dispute. Upholding the original score moves the
// result to RESOLVED and clears the provisional flags. Overturning it
// re-confirms the result with the corrected score, reverts every
// settled prediction of the match to PENDING, re-settles them, and
// recomputes each affected group so incremental drift cannot survive.
func (s *DisputeService) Resolve(ctx context.Context, resultID string, decision DisputeDecision) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DisputeService.Resolve")
	defer span.End()

	res, err := s.loadResult(ctx, resultID)
	if err != nil {
		return result.Result{}, err
	}

	if res.Status != result.StatusDisputed {
		if res.Status == result.StatusResolved {
			return result.Result{}, fmt.Errorf("%w: result %s", ErrResultFinalized, resultID)
		}
		return result.Result{}, fmt.Errorf("%w: resolve requires a disputed result, got %s", ErrInvalidResultState, res.Status)
	}

	if decision.Upheld {
		return s.resolveUpheld(ctx, res)
	}
	return s.resolveOverturned(ctx, res, decision)
}

func (s *DisputeService) resolveUpheld(ctx context.Context, res result.Result) (result.Result, error) {
	res.Status = result.StatusResolved
	res.UpdatedAt = s.now().UTC()

	updated, err := s.resultRepo.Update(ctx, res, res.Version)
	if err != nil {
		if errors.Is(err, result.ErrVersionConflict) {
			return result.Result{}, fmt.Errorf("%w: result %s changed concurrently", ErrInvalidResultState, res.ID)
		}
		return result.Result{}, fmt.Errorf("resolve dispute result %s: %w", res.ID, err)
	}

	if err := s.predictionRepo.FlagProvisionalByMatch(ctx, res.MatchID, false); err != nil {
		return result.Result{}, fmt.Errorf("clear provisional predictions match=%s: %w", res.MatchID, err)
	}

	s.logger.InfoContext(ctx, "dispute upheld original result", "result_id", res.ID)
	return updated, nil
}

func (s *DisputeService) resolveOverturned(ctx context.Context, res result.Result, decision DisputeDecision) (result.Result, error) {
	if decision.HomeScore < 0 || decision.AwayScore < 0 {
		return result.Result{}, fmt.Errorf("%w: corrected score must be non-negative, got %d-%d",
			ErrInvalidScore, decision.HomeScore, decision.AwayScore)
	}

	now := s.now().UTC()
	res.HomeScore = decision.HomeScore
	res.AwayScore = decision.AwayScore
	res.Status = result.StatusConfirmed
	res.UpdatedAt = now

	updated, err := s.resultRepo.Update(ctx, res, res.Version)
	if err != nil {
		if errors.Is(err, result.ErrVersionConflict) {
			return result.Result{}, fmt.Errorf("%w: result %s changed concurrently", ErrInvalidResultState, res.ID)
		}
		return result.Result{}, fmt.Errorf("re-confirm disputed result %s: %w", res.ID, err)
	}

	// Collect affected groups before the unwind while the old settled
	// rows are still visible.
	preds, err := s.predictionRepo.ListByMatch(ctx, res.MatchID)
	if err != nil {
		return result.Result{}, fmt.Errorf("list predictions match=%s: %w", res.MatchID, err)
	}
	groupSet := make(map[string]struct{})
	for _, pred := range preds {
		if pred.GroupID != "" {
			groupSet[pred.GroupID] = struct{}{}
		}
	}

	reverted, err := s.predictionRepo.RevertToPendingByMatch(ctx, res.MatchID)
	if err != nil {
		return result.Result{}, fmt.Errorf("revert predictions match=%s: %w", res.MatchID, err)
	}

	s.logger.InfoContext(ctx, "dispute overturned result",
		"result_id", res.ID,
		"corrected_score", fmt.Sprintf("%d-%d", decision.HomeScore, decision.AwayScore),
		"reverted", reverted,
		"groups", len(groupSet),
	)

	go s.resettle(res.ID, groupSet)

	return updated, nil
}

// resettle re-runs settlement under the corrected score and then fully
// recomputes every affected group, replacing any incrementally
// double-counted state.
func (s *DisputeService) resettle(resultID string, groups map[string]struct{}) {
	ctx := context.Background()

	if _, err := s.settlement.Settle(ctx, resultID); err != nil {
		s.logger.Error("re-settlement after dispute failed", "result_id", resultID, "error", err)
		return
	}

	var wg conc.WaitGroup
	for groupID := range groups {
		groupID := groupID
		wg.Go(func() {
			if err := s.leaderboard.Recompute(ctx, groupID); err != nil {
				s.logger.Error("recompute after dispute failed", "group_id", groupID, "error", err)
			}
		})
	}
	wg.Wait()
}

func (s *DisputeService) loadResult(ctx context.Context, resultID string) (result.Result, error) {
	if resultID == "" {
		return result.Result{}, fmt.Errorf("%w: result id is required", ErrInvalidInput)
	}
	res, found, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return result.Result{}, fmt.Errorf("get result %s: %w", resultID, err)
	}
	if !found {
		return result.Result{}, fmt.Errorf("%w: result %s", ErrNotFound, resultID)
	}
	return res, nil
}
