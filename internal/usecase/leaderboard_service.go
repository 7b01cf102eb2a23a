package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/member"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/settlement"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
)

// LeaderboardService keeps per-group rankings. Settlement events are
// applied incrementally; Recompute rebuilds a group from settled
// predictions when incremental state can no longer be trusted, e.g.
// after a dispute unwind.
type LeaderboardService struct {
	memberRepo member.Repository
	predRepo   prediction.Repository
	boardRepo  leaderboard.Repository
	readCache  *cache.Store
	logger     *logging.Logger
	now        func() time.Time
	groupLocks resilience.KeyedMutex
}

func NewLeaderboardService(
	memberRepo member.Repository,
	predRepo prediction.Repository,
	boardRepo leaderboard.Repository,
	readCache *cache.Store,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		memberRepo: memberRepo,
		predRepo:   predRepo,
		boardRepo:  boardRepo,
		readCache:  readCache,
		logger:     logger,
		now:        time.Now,
	}
}

// Apply folds a batch of settlement events into the incremental state.
// Increments are commutative, so event order within a batch does not
// matter; the per-group lock only fences Apply against Recompute.
func (s *LeaderboardService) Apply(ctx context.Context, events []settlement.Event) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Apply")
	defer span.End()

	byGroup := make(map[string][]settlement.Event)
	for _, event := range events {
		if event.GroupID == "" || event.UserID == "" {
			continue
		}
		byGroup[event.GroupID] = append(byGroup[event.GroupID], event)
	}

	for groupID, groupEvents := range byGroup {
		if err := s.applyGroup(ctx, groupID, groupEvents); err != nil {
			return err
		}
	}
	return nil
}

func (s *LeaderboardService) applyGroup(ctx context.Context, groupID string, events []settlement.Event) error {
	unlock := s.groupLocks.Lock("group:" + groupID)
	defer unlock()

	for _, event := range events {
		entry, found, err := s.boardRepo.GetEntry(ctx, groupID, event.UserID)
		if err != nil {
			return fmt.Errorf("get leaderboard entry group=%s user=%s: %w", groupID, event.UserID, err)
		}
		if !found {
			entry = leaderboard.Entry{GroupID: groupID, UserID: event.UserID}
			membership, ok, err := s.memberRepo.Get(ctx, groupID, event.UserID)
			if err != nil {
				return fmt.Errorf("get membership group=%s user=%s: %w", groupID, event.UserID, err)
			}
			if ok {
				entry.RegisteredAt = membership.RegisteredAt
			}
		}

		entry.Points += event.Points
		if event.Points == PointsExact {
			entry.ExactCount++
		}
		if event.Points >= PointsWinner {
			entry.WinnerCount++
		}

		if err := s.boardRepo.UpsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("upsert leaderboard entry group=%s user=%s: %w", groupID, event.UserID, err)
		}
	}

	s.invalidate(ctx, groupID)
	return nil
}

// GetLeaderboard returns the ranked entries of a group. The returned
// order is a strict total order: ties on points fall through exact-score
// count, winner count, registration time and finally user ID.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, groupID string) ([]leaderboard.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	if s.readCache == nil {
		return s.loadRanked(ctx, groupID)
	}

	value, err := s.readCache.GetOrLoad(ctx, leaderboardCacheKey(groupID), func(ctx context.Context) (any, error) {
		return s.loadRanked(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}
	entries, ok := value.([]leaderboard.Entry)
	if !ok {
		return nil, fmt.Errorf("unexpected leaderboard cache value type %T", value)
	}
	return entries, nil
}

func (s *LeaderboardService) loadRanked(ctx context.Context, groupID string) ([]leaderboard.Entry, error) {
	entries, err := s.boardRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard entries group=%s: %w", groupID, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return leaderboard.Less(entries[i], entries[j])
	})
	for idx := range entries {
		entries[idx].Rank = idx + 1
	}
	return entries, nil
}

// Recompute rebuilds a group's entries from its settled predictions.
// Idempotent; holds the group lock so a concurrent Apply cannot be read
// half-way through.
func (s *LeaderboardService) Recompute(ctx context.Context, groupID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Recompute")
	defer span.End()

	if groupID == "" {
		return fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	unlock := s.groupLocks.Lock("group:" + groupID)
	defer unlock()

	memberships, err := s.memberRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list memberships group=%s: %w", groupID, err)
	}

	entryByUser := make(map[string]*leaderboard.Entry, len(memberships))
	for _, membership := range memberships {
		entryByUser[membership.UserID] = &leaderboard.Entry{
			GroupID:      groupID,
			UserID:       membership.UserID,
			RegisteredAt: membership.RegisteredAt,
		}
	}

	settled, err := s.predRepo.ListSettledByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list settled predictions group=%s: %w", groupID, err)
	}

	for _, pred := range settled {
		entry, ok := entryByUser[pred.UserID]
		if !ok {
			entry = &leaderboard.Entry{GroupID: groupID, UserID: pred.UserID}
			entryByUser[pred.UserID] = entry
		}
		entry.Points += pred.Points
		if pred.Points == PointsExact {
			entry.ExactCount++
		}
		if pred.Points >= PointsWinner {
			entry.WinnerCount++
		}
	}

	entries := make([]leaderboard.Entry, 0, len(entryByUser))
	for _, entry := range entryByUser {
		entries = append(entries, *entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return leaderboard.Less(entries[i], entries[j])
	})
	for idx := range entries {
		entries[idx].Rank = idx + 1
	}

	if err := s.boardRepo.ReplaceByGroup(ctx, groupID, entries); err != nil {
		return fmt.Errorf("replace leaderboard group=%s: %w", groupID, err)
	}

	s.invalidate(ctx, groupID)
	s.logger.InfoContext(ctx, "leaderboard recomputed", "group_id", groupID, "entries", len(entries))
	return nil
}

func (s *LeaderboardService) invalidate(ctx context.Context, groupID string) {
	if s.readCache != nil {
		s.readCache.Delete(ctx, leaderboardCacheKey(groupID))
	}
}

func leaderboardCacheKey(groupID string) string {
	return "leaderboard:" + groupID
}
