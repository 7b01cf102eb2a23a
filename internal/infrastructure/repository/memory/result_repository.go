package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

type ResultRepository struct {
	mu        sync.RWMutex
	results   map[string]result.Result
	byMatchID map[string]string
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		results:   make(map[string]result.Result),
		byMatchID: make(map[string]string),
	}
}

func (r *ResultRepository) Create(_ context.Context, res result.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[res.ID] = res
	r.byMatchID[res.MatchID] = res.ID
	return nil
}

func (r *ResultRepository) GetByID(_ context.Context, resultID string) (result.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.results[resultID]
	return res, ok, nil
}

func (r *ResultRepository) GetByMatch(_ context.Context, matchID string) (result.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resultID, ok := r.byMatchID[matchID]
	if !ok {
		return result.Result{}, false, nil
	}
	res, ok := r.results[resultID]
	return res, ok, nil
}

func (r *ResultRepository) ListByStatus(_ context.Context, status result.Status) ([]result.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]result.Result, 0)
	for _, res := range r.results {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *ResultRepository) Update(_ context.Context, res result.Result, expectedVersion int64) (result.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.results[res.ID]
	if !ok || current.Version != expectedVersion {
		return result.Result{}, result.ErrVersionConflict
	}

	res.Version = expectedVersion + 1
	r.results[res.ID] = res
	return res, nil
}
