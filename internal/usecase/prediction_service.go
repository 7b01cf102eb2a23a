package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// PredictionService accepts prediction submissions, enforcing the
// deadline policy and (user, match, group) uniqueness. Submission data
// comes from the external prediction collaborator; settlement is the
// only later mutation.
type PredictionService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	deadline       DeadlinePolicy
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

type SubmitPredictionInput struct {
	UserID    string
	MatchID   string
	GroupID   string
	Winner    result.Winner
	HomeScore *int
	AwayScore *int
}

func NewPredictionService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	deadline DeadlinePolicy,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		deadline:       deadline,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	if input.UserID == "" || input.MatchID == "" || input.GroupID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user, match and group ids are required", ErrInvalidInput)
	}
	switch input.Winner {
	case result.WinnerHome, result.WinnerAway, result.WinnerDraw:
	default:
		return prediction.Prediction{}, fmt.Errorf("%w: unknown winner pick %q", ErrInvalidInput, input.Winner)
	}
	if (input.HomeScore == nil) != (input.AwayScore == nil) {
		return prediction.Prediction{}, fmt.Errorf("%w: exact-score pick requires both scores", ErrInvalidInput)
	}
	if input.HomeScore != nil && (*input.HomeScore < 0 || *input.AwayScore < 0) {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores must be non-negative", ErrInvalidScore)
	}

	m, found, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get match %s: %w", input.MatchID, err)
	}
	if !found {
		return prediction.Prediction{}, fmt.Errorf("%w: match %s", ErrNotFound, input.MatchID)
	}

	now := s.now().UTC()
	if !s.deadline.IsSubmissionAllowed(now, m.KickoffAt) {
		return prediction.Prediction{}, fmt.Errorf("%w: match %s kicks off at %s",
			ErrSubmissionClosed, input.MatchID, m.KickoffAt.Format(time.RFC3339))
	}

	predictionID, err := s.idGen.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}

	pred := prediction.Prediction{
		ID:          predictionID,
		UserID:      input.UserID,
		MatchID:     input.MatchID,
		GroupID:     input.GroupID,
		Winner:      input.Winner,
		HomeScore:   input.HomeScore,
		AwayScore:   input.AwayScore,
		Status:      prediction.StatusPending,
		SubmittedAt: now,
		Version:     1,
	}
	if err := s.predictionRepo.Create(ctx, pred); err != nil {
		if errors.Is(err, prediction.ErrDuplicate) {
			return prediction.Prediction{}, fmt.Errorf("%w: user=%s match=%s group=%s",
				ErrDuplicatePrediction, input.UserID, input.MatchID, input.GroupID)
		}
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction submitted",
		"prediction_id", predictionID, "match_id", input.MatchID, "group_id", input.GroupID)
	return pred, nil
}
