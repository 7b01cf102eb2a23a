package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
)

type LeaderboardRepository struct {
	mu      sync.RWMutex
	byGroup map[string]map[string]leaderboard.Entry
}

func NewLeaderboardRepository() *LeaderboardRepository {
	return &LeaderboardRepository{
		byGroup: make(map[string]map[string]leaderboard.Entry),
	}
}

func (r *LeaderboardRepository) GetEntry(_ context.Context, groupID, userID string) (leaderboard.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.byGroup[groupID]
	if !ok {
		return leaderboard.Entry{}, false, nil
	}
	entry, ok := group[userID]
	return entry, ok, nil
}

func (r *LeaderboardRepository) UpsertEntry(_ context.Context, entry leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.byGroup[entry.GroupID]
	if !ok {
		group = make(map[string]leaderboard.Entry)
		r.byGroup[entry.GroupID] = group
	}
	group[entry.UserID] = entry
	return nil
}

func (r *LeaderboardRepository) ListByGroup(_ context.Context, groupID string) ([]leaderboard.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.byGroup[groupID]
	out := make([]leaderboard.Entry, 0, len(group))
	for _, entry := range group {
		out = append(out, entry)
	}
	return out, nil
}

func (r *LeaderboardRepository) ReplaceByGroup(_ context.Context, groupID string, entries []leaderboard.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group := make(map[string]leaderboard.Entry, len(entries))
	for _, entry := range entries {
		group[entry.UserID] = entry
	}
	r.byGroup[groupID] = group
	return nil
}
