package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

type PredictionRepository struct {
	mu          sync.RWMutex
	predictions map[string]prediction.Prediction
	byTriple    map[string]string
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{
		predictions: make(map[string]prediction.Prediction),
		byTriple:    make(map[string]string),
	}
}

func tripleKey(userID, matchID, groupID string) string {
	return userID + "|" + matchID + "|" + groupID
}

func (r *PredictionRepository) Create(_ context.Context, pred prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tripleKey(pred.UserID, pred.MatchID, pred.GroupID)
	if _, exists := r.byTriple[key]; exists {
		return prediction.ErrDuplicate
	}

	r.predictions[pred.ID] = pred
	r.byTriple[key] = pred.ID
	return nil
}

func (r *PredictionRepository) GetByID(_ context.Context, predictionID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pred, ok := r.predictions[predictionID]
	return pred, ok, nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, pred := range r.predictions {
		if pred.MatchID == matchID {
			out = append(out, pred)
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListPendingByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, pred := range r.predictions {
		if pred.MatchID == matchID && pred.Status == prediction.StatusPending {
			out = append(out, pred)
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListSettledByGroup(_ context.Context, groupID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, pred := range r.predictions {
		if pred.GroupID == groupID && pred.Status == prediction.StatusSettled {
			out = append(out, pred)
		}
	}
	return out, nil
}

func (r *PredictionRepository) MarkSettled(_ context.Context, predictionID string, points int, settledAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pred, ok := r.predictions[predictionID]
	if !ok {
		return false, nil
	}
	if pred.Status != prediction.StatusPending {
		return false, nil
	}

	pred.Status = prediction.StatusSettled
	pred.Points = points
	pred.Provisional = false
	pred.SettledAt = &settledAt
	pred.Version++
	r.predictions[predictionID] = pred
	return true, nil
}

func (r *PredictionRepository) FlagProvisionalByMatch(_ context.Context, matchID string, provisional bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, pred := range r.predictions {
		if pred.MatchID != matchID || pred.Status != prediction.StatusSettled {
			continue
		}
		pred.Provisional = provisional
		pred.Version++
		r.predictions[id] = pred
	}
	return nil
}

func (r *PredictionRepository) RevertToPendingByMatch(_ context.Context, matchID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reverted := 0
	for id, pred := range r.predictions {
		if pred.MatchID != matchID || pred.Status != prediction.StatusSettled {
			continue
		}
		pred.Status = prediction.StatusPending
		pred.Points = 0
		pred.Provisional = false
		pred.SettledAt = nil
		pred.Version++
		r.predictions[id] = pred
		reverted++
	}
	return reverted, nil
}
