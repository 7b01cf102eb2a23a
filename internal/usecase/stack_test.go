package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/member"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// testStack wires the services against in-memory repositories the same
// way the app container does, minus the HTTP layer.
type testStack struct {
	matches     *memory.MatchRepository
	results     *memory.ResultRepository
	predictions *memory.PredictionRepository
	members     *memory.MemberRepository
	boards      *memory.LeaderboardRepository

	leaderboardSvc *LeaderboardService
	settlementSvc  *SettlementService
	resultSvc      *ResultService
	predictionSvc  *PredictionService
	disputeSvc     *DisputeService
}

func newTestStack(t *testing.T, matches []match.Match) *testStack {
	t.Helper()

	logger := logging.NewNop()

	stack := &testStack{
		matches:     memory.NewMatchRepository(matches),
		results:     memory.NewResultRepository(),
		predictions: memory.NewPredictionRepository(),
		members:     memory.NewMemberRepository(),
		boards:      memory.NewLeaderboardRepository(),
	}

	stack.leaderboardSvc = NewLeaderboardService(stack.members, stack.predictions, stack.boards, nil, logger)
	stack.settlementSvc = NewSettlementService(stack.results, stack.predictions, stack.leaderboardSvc, nil, logger, 4)
	stack.resultSvc = NewResultService(stack.matches, stack.results, stack.predictions, stack.settlementSvc, idgen.NewRandomGenerator(), logger)
	stack.predictionSvc = NewPredictionService(stack.matches, stack.predictions, DefaultDeadlinePolicy(), idgen.NewRandomGenerator(), logger)
	stack.disputeSvc = NewDisputeService(stack.results, stack.predictions, stack.settlementSvc, stack.leaderboardSvc, logger)

	return stack
}

func (s *testStack) addMember(t *testing.T, groupID, userID string, registeredAt time.Time) {
	t.Helper()
	err := s.members.Put(context.Background(), member.Membership{
		GroupID:      groupID,
		UserID:       userID,
		RegisteredAt: registeredAt,
	})
	if err != nil {
		t.Fatalf("seed membership %s: %v", userID, err)
	}
}

func finishedMatch(id string, kickoff time.Time) match.Match {
	return match.Match{
		ID:         id,
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		KickoffAt:  kickoff,
		Status:     match.StatusFinished,
	}
}

func scheduledMatch(id string, kickoff time.Time) match.Match {
	return match.Match{
		ID:         id,
		HomeTeamID: "team-home",
		AwayTeamID: "team-away",
		KickoffAt:  kickoff,
		Status:     match.StatusScheduled,
	}
}

func intPtr(v int) *int {
	return &v
}
