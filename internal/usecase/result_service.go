package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const (
	bulkStatusSuccess = "success"
	bulkStatusFailed  = "failed"
	bulkStatusSkipped = "skipped"

	defaultBulkWorkers = 4
)

// ResultService owns the result lifecycle: PENDING -> CONFIRMED ->
// RESOLVED, with the dispute branch handled by DisputeService. All
// transitions are all-or-nothing; illegal ones are rejected before any
// write.
type ResultService struct {
	matchRepo      match.Repository
	resultRepo     result.Repository
	predictionRepo prediction.Repository
	settlement     *SettlementService
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewResultService(
	matchRepo match.Repository,
	resultRepo result.Repository,
	predictionRepo prediction.Repository,
	settlement *SettlementService,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		matchRepo:      matchRepo,
		resultRepo:     resultRepo,
		predictionRepo: predictionRepo,
		settlement:     settlement,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// RecordFinalScore creates the PENDING result for a finished match.
func (s *ResultService) RecordFinalScore(ctx context.Context, matchID string, homeScore, awayScore int) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordFinalScore")
	defer span.End()

	if matchID == "" {
		return result.Result{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if homeScore < 0 || awayScore < 0 {
		return result.Result{}, fmt.Errorf("%w: scores must be non-negative, got %d-%d", ErrInvalidScore, homeScore, awayScore)
	}

	m, found, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return result.Result{}, fmt.Errorf("get match %s: %w", matchID, err)
	}
	if !found {
		return result.Result{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if !match.IsFinishedStatus(m.Status) {
		return result.Result{}, fmt.Errorf("%w: match %s is %s, results require a finished match",
			ErrInvalidMatchState, matchID, m.Status)
	}

	if _, exists, err := s.resultRepo.GetByMatch(ctx, matchID); err != nil {
		return result.Result{}, fmt.Errorf("check existing result match=%s: %w", matchID, err)
	} else if exists {
		return result.Result{}, fmt.Errorf("%w: match %s already has a result", ErrInvalidResultState, matchID)
	}

	resultID, err := s.idGen.NewID()
	if err != nil {
		return result.Result{}, fmt.Errorf("generate result id: %w", err)
	}

	now := s.now().UTC()
	res := result.Result{
		ID:        resultID,
		MatchID:   matchID,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Status:    result.StatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.resultRepo.Create(ctx, res); err != nil {
		return result.Result{}, fmt.Errorf("create result match=%s: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "final score recorded",
		"result_id", resultID, "match_id", matchID, "score", fmt.Sprintf("%d-%d", homeScore, awayScore))
	return res, nil
}

// Confirm moves PENDING -> CONFIRMED and kicks off settlement in the
// background. Concurrent confirms race on the version check; the loser
// sees ErrAlreadyConfirmed instead of double-settling.
func (s *ResultService) Confirm(ctx context.Context, resultID, actor string) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Confirm")
	defer span.End()

	if actor == "" {
		return result.Result{}, fmt.Errorf("%w: confirming actor is required", ErrInvalidInput)
	}

	res, err := s.loadResult(ctx, resultID)
	if err != nil {
		return result.Result{}, err
	}

	switch res.Status {
	case result.StatusPending:
	case result.StatusConfirmed:
		return result.Result{}, fmt.Errorf("%w: result %s", ErrAlreadyConfirmed, resultID)
	case result.StatusResolved:
		return result.Result{}, fmt.Errorf("%w: result %s", ErrResultFinalized, resultID)
	default:
		return result.Result{}, fmt.Errorf("%w: cannot confirm result in status %s", ErrInvalidResultState, res.Status)
	}
	if res.HomeScore < 0 || res.AwayScore < 0 {
		return result.Result{}, fmt.Errorf("%w: stored score %d-%d", ErrInvalidScore, res.HomeScore, res.AwayScore)
	}

	now := s.now().UTC()
	res.Status = result.StatusConfirmed
	res.ConfirmedBy = actor
	res.ConfirmedAt = &now
	res.UpdatedAt = now

	updated, err := s.resultRepo.Update(ctx, res, res.Version)
	if err != nil {
		if errors.Is(err, result.ErrVersionConflict) {
			return result.Result{}, fmt.Errorf("%w: result %s confirmed concurrently", ErrAlreadyConfirmed, resultID)
		}
		return result.Result{}, fmt.Errorf("confirm result %s: %w", resultID, err)
	}

	s.settlement.SettleAsync(resultID)

	s.logger.InfoContext(ctx, "result confirmed", "result_id", resultID, "actor", actor)
	return updated, nil
}

// Finalize moves CONFIRMED -> RESOLVED. A result may only resolve once
// every prediction of its match has settled.
func (s *ResultService) Finalize(ctx context.Context, resultID, actor string) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Finalize")
	defer span.End()

	res, err := s.loadResult(ctx, resultID)
	if err != nil {
		return result.Result{}, err
	}

	switch res.Status {
	case result.StatusConfirmed:
	case result.StatusResolved:
		return result.Result{}, fmt.Errorf("%w: result %s", ErrResultFinalized, resultID)
	default:
		return result.Result{}, fmt.Errorf("%w: cannot finalize result in status %s", ErrInvalidResultState, res.Status)
	}

	pending, err := s.predictionRepo.ListPendingByMatch(ctx, res.MatchID)
	if err != nil {
		return result.Result{}, fmt.Errorf("list pending predictions match=%s: %w", res.MatchID, err)
	}
	if len(pending) > 0 {
		return result.Result{}, fmt.Errorf("%w: %d predictions still pending for match %s",
			ErrInvalidResultState, len(pending), res.MatchID)
	}

	res.Status = result.StatusResolved
	res.UpdatedAt = s.now().UTC()

	updated, err := s.resultRepo.Update(ctx, res, res.Version)
	if err != nil {
		if errors.Is(err, result.ErrVersionConflict) {
			return result.Result{}, fmt.Errorf("%w: result %s changed concurrently", ErrInvalidResultState, resultID)
		}
		return result.Result{}, fmt.Errorf("finalize result %s: %w", resultID, err)
	}

	s.logger.InfoContext(ctx, "result finalized", "result_id", resultID, "actor", actor)
	return updated, nil
}

func (s *ResultService) GetByID(ctx context.Context, resultID string) (result.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.GetByID")
	defer span.End()

	return s.loadResult(ctx, resultID)
}

func (s *ResultService) loadResult(ctx context.Context, resultID string) (result.Result, error) {
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

type FinalScoreInput struct {
	MatchID   string
	HomeScore int
	AwayScore int
}

type BulkRecordRow struct {
	MatchID    string `json:"match_id"`
	ResultID   string `json:"result_id,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type BulkRecordResult struct {
	TaskCount    int             `json:"task_count"`
	SuccessCount int             `json:"success_count"`
	FailedCount  int             `json:"failed_count"`
	SkippedCount int             `json:"skipped_count"`
	WorkerCount  int             `json:"worker_count"`
	Rows         []BulkRecordRow `json:"rows"`
}

// BulkRecordFinalScores ingests a batch of final scores over a worker
// pool. Rows whose match already has a result are reported as skipped,
// so re-posting the same batch is harmless.
func (s *ResultService) BulkRecordFinalScores(ctx context.Context, inputs []FinalScoreInput, maxWorkers int) (BulkRecordResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.BulkRecordFinalScores")
	defer span.End()

	if len(inputs) == 0 {
		return BulkRecordResult{}, fmt.Errorf("%w: at least one score row is required", ErrInvalidInput)
	}

	workerCount := maxWorkers
	if workerCount <= 0 {
		workerCount = defaultBulkWorkers
	}
	if workerCount > len(inputs) {
		workerCount = len(inputs)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BulkRecordResult{}, fmt.Errorf("create ingest worker pool: %w", err)
	}
	defer pool.Release()

	rows := make(chan BulkRecordRow, len(inputs))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	var workers sync.WaitGroup
	for _, input := range inputs {
		input := input
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BulkRecordRow{MatchID: input.MatchID}

			res, recordErr := s.RecordFinalScore(ctx, input.MatchID, input.HomeScore, input.AwayScore)
			switch {
			case recordErr == nil:
				row.Status = bulkStatusSuccess
				row.ResultID = res.ID
				successCount.Add(1)
			case isDuplicateResultErr(recordErr):
				row.Status = bulkStatusSkipped
				row.Message = recordErr.Error()
				skippedCount.Add(1)
			default:
				row.Status = bulkStatusFailed
				row.Message = recordErr.Error()
				failedCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()
			rows <- row
		}); err != nil {
			workers.Done()
			return BulkRecordResult{}, fmt.Errorf("submit ingest task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	out := BulkRecordResult{
		TaskCount:   len(inputs),
		WorkerCount: workerCount,
	}
	for row := range rows {
		out.Rows = append(out.Rows, row)
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].MatchID < out.Rows[j].MatchID
	})

	out.SuccessCount = int(successCount.Load())
	out.FailedCount = int(failedCount.Load())
	out.SkippedCount = int(skippedCount.Load())
	return out, nil
}

func isDuplicateResultErr(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidResultState)
}
