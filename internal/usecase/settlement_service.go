package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/domain/settlement"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
)

const defaultSettlementWorkers = 8

type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateSucceeded RunState = "succeeded"
	RunStateFailed    RunState = "failed"
)

// SettlementRun is the pollable status of a background settle.
type SettlementRun struct {
	ResultID   string     `json:"result_id"`
	State      RunState   `json:"state"`
	Settled    int        `json:"settled"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type SettleSummary struct {
	ResultID string
	Settled  int
	Skipped  int
	Failed   int
}

// SettlementService grades and settles the pending predictions of a
// confirmed result. Settlement is at-most-once per prediction: the
// conditional PENDING -> SETTLED repository transition makes re-runs
// skip already-settled rows, so crashes and retries are safe.
type SettlementService struct {
	resultRepo     result.Repository
	predictionRepo prediction.Repository
	leaderboard    *LeaderboardService
	publisher      settlement.Publisher
	logger         *logging.Logger
	now            func() time.Time
	maxWorkers     int
	flight         resilience.SingleFlight

	mu   sync.Mutex
	runs map[string]*SettlementRun
}

func NewSettlementService(
	resultRepo result.Repository,
	predictionRepo prediction.Repository,
	leaderboard *LeaderboardService,
	publisher settlement.Publisher,
	logger *logging.Logger,
	maxWorkers int,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultSettlementWorkers
	}

	return &SettlementService{
		resultRepo:     resultRepo,
		predictionRepo: predictionRepo,
		leaderboard:    leaderboard,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
		maxWorkers:     maxWorkers,
		runs:           make(map[string]*SettlementRun),
	}
}

// Settle settles every pending prediction of the result's match.
// Concurrent calls for the same result are collapsed into one run.
func (s *SettlementService) Settle(ctx context.Context, resultID string) (SettleSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Settle")
	defer span.End()

	if resultID == "" {
		return SettleSummary{}, fmt.Errorf("%w: result id is required", ErrInvalidInput)
	}

	value, err, _ := s.flight.Do("settle:"+resultID, func() (any, error) {
		return s.settleOnce(ctx, resultID)
	})
	if err != nil {
		return SettleSummary{}, err
	}
	summary, ok := value.(SettleSummary)
	if !ok {
		return SettleSummary{}, fmt.Errorf("unexpected settle summary type %T", value)
	}
	return summary, nil
}

func (s *SettlementService) settleOnce(ctx context.Context, resultID string) (SettleSummary, error) {
	res, found, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		return SettleSummary{}, fmt.Errorf("get result for settlement: %w", err)
	}
	if !found {
		return SettleSummary{}, fmt.Errorf("%w: result %s", ErrNotFound, resultID)
	}

	switch res.Status {
	case result.StatusConfirmed, result.StatusResolved:
	default:
		return SettleSummary{}, fmt.Errorf("%w: cannot settle result in status %s", ErrInvalidResultState, res.Status)
	}

	preds, err := s.predictionRepo.ListByMatch(ctx, res.MatchID)
	if err != nil {
		return SettleSummary{}, fmt.Errorf("list predictions match=%s: %w", res.MatchID, err)
	}

	summary := SettleSummary{ResultID: resultID}
	if len(preds) == 0 {
		return summary, nil
	}

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return SettleSummary{}, fmt.Errorf("create settlement worker pool: %w", err)
	}
	defer pool.Release()

	settledAt := s.now().UTC()
	events := make(chan settlement.Event, len(preds))

	var settledCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	cancelled := false
	for _, pred := range preds {
		if pred.Status != prediction.StatusPending {
			// Settled on an earlier or concurrent run; counted so a
			// re-run reports the full picture.
			skippedCount.Add(1)
			continue
		}
		if ctx.Err() != nil {
			// Cooperative cancellation: already-settled rows stay
			// settled, the rest resume on the next run.
			cancelled = true
			break
		}

		pred := pred
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			points, gradeErr := GradePrediction(pred, res.HomeScore, res.AwayScore)
			if gradeErr != nil {
				failedCount.Add(1)
				s.logger.ErrorContext(ctx, "grade prediction failed",
					"prediction_id", pred.ID, "result_id", resultID, "error", gradeErr)
				return
			}

			applied, markErr := s.predictionRepo.MarkSettled(ctx, pred.ID, points, settledAt)
			if markErr != nil {
				failedCount.Add(1)
				s.logger.ErrorContext(ctx, "mark prediction settled failed",
					"prediction_id", pred.ID, "result_id", resultID, "error", markErr)
				return
			}
			if !applied {
				skippedCount.Add(1)
				return
			}

			settledCount.Add(1)
			events <- settlement.Event{
				PredictionID: pred.ID,
				UserID:       pred.UserID,
				GroupID:      pred.GroupID,
				MatchID:      pred.MatchID,
				ResultID:     resultID,
				Points:       points,
				SettledAt:    settledAt,
			}
		}); err != nil {
			workers.Done()
			failedCount.Add(1)
			s.logger.ErrorContext(ctx, "submit settlement task failed",
				"prediction_id", pred.ID, "result_id", resultID, "error", err)
		}
	}

	workers.Wait()
	close(events)

	batch := make([]settlement.Event, 0, len(events))
	for event := range events {
		batch = append(batch, event)
	}

	summary.Settled = int(settledCount.Load())
	summary.Skipped = int(skippedCount.Load())
	summary.Failed = int(failedCount.Load())

	if len(batch) > 0 {
		if err := s.leaderboard.Apply(ctx, batch); err != nil {
			return summary, fmt.Errorf("%w: apply settlement events: %v", ErrSettlementPartial, err)
		}
		if s.publisher != nil {
			if err := s.publisher.PublishBatch(ctx, batch); err != nil {
				// The feed is for downstream audit only; aggregation
				// already happened, so a publish hiccup is not a
				// settlement failure.
				s.logger.WarnContext(ctx, "publish settlement events failed",
					"result_id", resultID, "events", len(batch), "error", err)
			}
		}
	}

	if cancelled {
		return summary, fmt.Errorf("%w: settlement cancelled for result %s: %v", ErrSettlementPartial, resultID, ctx.Err())
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d predictions failed for result %s",
			ErrSettlementPartial, summary.Failed, len(preds), resultID)
	}

	s.logger.InfoContext(ctx, "settlement completed",
		"result_id", resultID,
		"settled", summary.Settled,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// SettleAsync runs Settle in the background and tracks a pollable run.
func (s *SettlementService) SettleAsync(resultID string) {
	started := s.now().UTC()
	run := &SettlementRun{
		ResultID:  resultID,
		State:     RunStateRunning,
		StartedAt: started,
	}
	s.mu.Lock()
	s.runs[resultID] = run
	s.mu.Unlock()

	go func() {
		summary, err := s.Settle(context.Background(), resultID)
		finished := s.now().UTC()

		s.mu.Lock()
		defer s.mu.Unlock()
		run.Settled = summary.Settled
		run.Skipped = summary.Skipped
		run.Failed = summary.Failed
		run.FinishedAt = &finished
		if err != nil {
			run.State = RunStateFailed
			run.Message = err.Error()
			return
		}
		run.State = RunStateSucceeded
	}()
}

// Status returns the latest background run for a result, if any.
func (s *SettlementService) Status(resultID string) (SettlementRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[resultID]
	if !ok {
		return SettlementRun{}, false
	}
	return *run, true
}
