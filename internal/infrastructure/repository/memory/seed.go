package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/member"
)

// SeedMatches returns a small fixture list for running without a database.
// Half the matches are finished so results can be recorded immediately, the
// rest kick off in the future so predictions stay open.
func SeedMatches(now time.Time) []match.Match {
	return []match.Match{
		{ID: "match-1", HomeTeamID: "team-ars", AwayTeamID: "team-che", KickoffAt: now.Add(-3 * time.Hour), Status: match.StatusFinished},
		{ID: "match-2", HomeTeamID: "team-liv", AwayTeamID: "team-mun", KickoffAt: now.Add(-2 * time.Hour), Status: match.StatusFinished},
		{ID: "match-3", HomeTeamID: "team-mci", AwayTeamID: "team-tot", KickoffAt: now.Add(4 * time.Hour), Status: match.StatusScheduled},
		{ID: "match-4", HomeTeamID: "team-new", AwayTeamID: "team-avl", KickoffAt: now.Add(26 * time.Hour), Status: match.StatusScheduled},
	}
}

// SeedMemberships fills the member repository with one demo group. Staggered
// registration times make the final leaderboard tie-break observable.
func SeedMemberships(ctx context.Context, repo *MemberRepository, now time.Time) error {
	users := []string{"user-1", "user-2", "user-3", "user-4"}
	for i, userID := range users {
		m := member.Membership{
			GroupID:      "group-demo",
			UserID:       userID,
			RegisteredAt: now.Add(-time.Duration(len(users)-i) * 24 * time.Hour),
		}
		if err := repo.Put(ctx, m); err != nil {
			return fmt.Errorf("seed membership %s: %w", userID, err)
		}
	}
	return nil
}
