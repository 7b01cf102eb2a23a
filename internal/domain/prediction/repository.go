package prediction

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when a (user, match, group) triple already
// has a prediction.
var ErrDuplicate = errors.New("prediction already exists")

type Repository interface {
	Create(ctx context.Context, pred Prediction) error
	GetByID(ctx context.Context, predictionID string) (Prediction, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	ListPendingByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	ListSettledByGroup(ctx context.Context, groupID string) ([]Prediction, error)

	// MarkSettled transitions PENDING -> SETTLED and records points,
	// clearing any provisional flag. It reports false without error when
	// the prediction was already settled, which keeps retries idempotent.
	MarkSettled(ctx context.Context, predictionID string, points int, settledAt time.Time) (bool, error)

	// FlagProvisionalByMatch marks every settled prediction of a match as
	// provisional while its result is under dispute.
	FlagProvisionalByMatch(ctx context.Context, matchID string, provisional bool) error

	// RevertToPendingByMatch is the explicit dispute-unwind path: settled
	// predictions of the match go back to PENDING with zero points.
	RevertToPendingByMatch(ctx context.Context, matchID string) (int, error)
}
