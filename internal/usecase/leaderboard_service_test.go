package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
	"github.com/riskibarqy/prediction-league/internal/domain/settlement"
)

func TestLeaderboardService_Apply(t *testing.T) {
	now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)

	t.Run("accumulates points and counters per user", func(t *testing.T) {
		stack := newTestStack(t, nil)
		stack.addMember(t, "group-1", "user-1", now.Add(-48*time.Hour))

		events := []settlement.Event{
			{PredictionID: "p1", UserID: "user-1", GroupID: "group-1", Points: PointsExact, SettledAt: now},
			{PredictionID: "p2", UserID: "user-1", GroupID: "group-1", Points: PointsWinner, SettledAt: now},
			{PredictionID: "p3", UserID: "user-1", GroupID: "group-1", Points: PointsMiss, SettledAt: now},
		}
		if err := stack.leaderboardSvc.Apply(t.Context(), events); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		entries, err := stack.leaderboardSvc.GetLeaderboard(t.Context(), "group-1")
		if err != nil {
			t.Fatalf("GetLeaderboard returned error: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(entries))
		}
		entry := entries[0]
		if entry.Points != 4 {
			t.Fatalf("points = %d, want 4", entry.Points)
		}
		if entry.ExactCount != 1 || entry.WinnerCount != 2 {
			t.Fatalf("exact/winner = %d/%d, want 1/2", entry.ExactCount, entry.WinnerCount)
		}
		if !entry.RegisteredAt.Equal(now.Add(-48 * time.Hour)) {
			t.Fatalf("RegisteredAt = %s, want the membership's registration time", entry.RegisteredAt)
		}
		if entry.Rank != 1 {
			t.Fatalf("rank = %d, want 1", entry.Rank)
		}
	})

	t.Run("drops events without a group or user", func(t *testing.T) {
		stack := newTestStack(t, nil)

		events := []settlement.Event{
			{PredictionID: "p1", UserID: "", GroupID: "group-1", Points: 3},
			{PredictionID: "p2", UserID: "user-1", GroupID: "", Points: 3},
		}
		if err := stack.leaderboardSvc.Apply(t.Context(), events); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		entries, err := stack.leaderboardSvc.GetLeaderboard(t.Context(), "group-1")
		if err != nil {
			t.Fatalf("GetLeaderboard returned error: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("entries = %d, want 0", len(entries))
		}
	})
}

func TestLeaderboardService_GetLeaderboard_TieBreaks(t *testing.T) {
	now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	stack := newTestStack(t, nil)

	// All four users end on 3 points; the chain below decides the order.
	stack.addMember(t, "group-1", "user-early", now.Add(-72*time.Hour))
	stack.addMember(t, "group-1", "user-late", now.Add(-24*time.Hour))
	stack.addMember(t, "group-1", "user-exact", now.Add(-24*time.Hour))
	stack.addMember(t, "group-1", "user-winners", now.Add(-24*time.Hour))

	events := []settlement.Event{
		// user-exact: one exact hit.
		{PredictionID: "p1", UserID: "user-exact", GroupID: "group-1", Points: PointsExact},
		// user-winners: three winner hits.
		{PredictionID: "p2", UserID: "user-winners", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p3", UserID: "user-winners", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p4", UserID: "user-winners", GroupID: "group-1", Points: PointsWinner},
		// user-early and user-late: identical records, registration decides.
		{PredictionID: "p5", UserID: "user-early", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p6", UserID: "user-early", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p7", UserID: "user-early", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p8", UserID: "user-late", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p9", UserID: "user-late", GroupID: "group-1", Points: PointsWinner},
		{PredictionID: "p10", UserID: "user-late", GroupID: "group-1", Points: PointsWinner},
	}
	if err := stack.leaderboardSvc.Apply(t.Context(), events); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	entries, err := stack.leaderboardSvc.GetLeaderboard(t.Context(), "group-1")
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}

	// user-exact wins on exact count, user-early beats the rest on
	// registration, and user-late edges user-winners on user ID since
	// their whole records are identical.
	wantOrder := []string{"user-exact", "user-early", "user-late", "user-winners"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("entries = %d, want %d", len(entries), len(wantOrder))
	}
	for i, want := range wantOrder {
		if entries[i].UserID != want {
			t.Fatalf("rank %d = %s, want %s", i+1, entries[i].UserID, want)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("entry %s rank = %d, want %d", entries[i].UserID, entries[i].Rank, i+1)
		}
	}
}

func TestLeaderboardService_Recompute(t *testing.T) {
	now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)

	t.Run("rebuilds entries from settled predictions", func(t *testing.T) {
		stack := newTestStack(t, nil)
		stack.addMember(t, "group-1", "user-1", now.Add(-48*time.Hour))
		stack.addMember(t, "group-1", "user-2", now.Add(-24*time.Hour))

		settledAt := now
		seedPrediction(t, stack, prediction.Prediction{
			ID: "p1", UserID: "user-1", MatchID: "match-1", GroupID: "group-1",
			Winner: result.WinnerHome, Points: 3,
			Status: prediction.StatusSettled, SettledAt: &settledAt,
		})
		seedPrediction(t, stack, prediction.Prediction{
			ID: "p2", UserID: "user-1", MatchID: "match-2", GroupID: "group-1",
			Winner: result.WinnerDraw, Points: 1,
			Status: prediction.StatusSettled, SettledAt: &settledAt,
		})
		// Pending rows contribute nothing until they settle.
		seedPrediction(t, stack, prediction.Prediction{
			ID: "p3", UserID: "user-2", MatchID: "match-3", GroupID: "group-1",
			Winner: result.WinnerAway,
			Status: prediction.StatusPending,
		})

		if err := stack.leaderboardSvc.Recompute(t.Context(), "group-1"); err != nil {
			t.Fatalf("Recompute returned error: %v", err)
		}

		entries, err := stack.leaderboardSvc.GetLeaderboard(t.Context(), "group-1")
		if err != nil {
			t.Fatalf("GetLeaderboard returned error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2 (every member gets a row)", len(entries))
		}
		if entries[0].UserID != "user-1" || entries[0].Points != 4 {
			t.Fatalf("rank 1 = %s with %d points, want user-1 with 4", entries[0].UserID, entries[0].Points)
		}
		if entries[1].UserID != "user-2" || entries[1].Points != 0 {
			t.Fatalf("rank 2 = %s with %d points, want user-2 with 0", entries[1].UserID, entries[1].Points)
		}
	})

	t.Run("replaces stale incremental state", func(t *testing.T) {
		stack := newTestStack(t, nil)
		stack.addMember(t, "group-1", "user-1", now.Add(-48*time.Hour))

		// Double-applied increment that no settled prediction backs up.
		events := []settlement.Event{
			{PredictionID: "p1", UserID: "user-1", GroupID: "group-1", Points: 3},
			{PredictionID: "p1", UserID: "user-1", GroupID: "group-1", Points: 3},
		}
		if err := stack.leaderboardSvc.Apply(t.Context(), events); err != nil {
			t.Fatalf("Apply returned error: %v", err)
		}

		settledAt := now
		seedPrediction(t, stack, prediction.Prediction{
			ID: "p1", UserID: "user-1", MatchID: "match-1", GroupID: "group-1",
			Winner: result.WinnerHome, Points: 3,
			Status: prediction.StatusSettled, SettledAt: &settledAt,
		})

		if err := stack.leaderboardSvc.Recompute(t.Context(), "group-1"); err != nil {
			t.Fatalf("Recompute returned error: %v", err)
		}

		entries, err := stack.leaderboardSvc.GetLeaderboard(t.Context(), "group-1")
		if err != nil {
			t.Fatalf("GetLeaderboard returned error: %v", err)
		}
		if entries[0].Points != 3 {
			t.Fatalf("points after recompute = %d, want 3", entries[0].Points)
		}
	})

	t.Run("group id required", func(t *testing.T) {
		stack := newTestStack(t, nil)
		if err := stack.leaderboardSvc.Recompute(t.Context(), ""); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := stack.leaderboardSvc.GetLeaderboard(t.Context(), ""); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}
