package usecase

import (
	"fmt"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

const (
	PointsExact  = 3
	PointsWinner = 1
	PointsMiss   = 0
)

// DeriveWinner computes the categorical outcome of a final score.
func DeriveWinner(homeScore, awayScore int) (result.Winner, error) {
	if homeScore < 0 || awayScore < 0 {
		return "", fmt.Errorf("%w: scores must be non-negative, got %d-%d", ErrInvalidScore, homeScore, awayScore)
	}

	switch {
	case homeScore > awayScore:
		return result.WinnerHome, nil
	case homeScore < awayScore:
		return result.WinnerAway, nil
	default:
		return result.WinnerDraw, nil
	}
}

// GradePrediction awards 3 points for the exact score line, 1 for the
// right winner and 0 otherwise.
func GradePrediction(pred prediction.Prediction, homeScore, awayScore int) (int, error) {
	winner, err := DeriveWinner(homeScore, awayScore)
	if err != nil {
		return 0, err
	}

	if pred.HasExactScore() && *pred.HomeScore == homeScore && *pred.AwayScore == awayScore {
		return PointsExact, nil
	}
	if pred.Winner == winner {
		return PointsWinner, nil
	}
	return PointsMiss, nil
}
