package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/result"
)

func TestPredictionService_Submit(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	newStack := func(t *testing.T, kickoff time.Time) *testStack {
		t.Helper()
		stack := newTestStack(t, []match.Match{scheduledMatch("match-1", kickoff)})
		stack.predictionSvc.now = func() time.Time { return now }
		return stack
	}

	t.Run("winner-only pick accepted", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		pred, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:  "user-1",
			MatchID: "match-1",
			GroupID: "group-1",
			Winner:  result.WinnerHome,
		})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if pred.ID == "" {
			t.Fatal("expected a generated prediction id")
		}
		if pred.Status != prediction.StatusPending {
			t.Fatalf("status = %s, want PENDING", pred.Status)
		}
		if pred.HasExactScore() {
			t.Fatal("winner-only pick should not carry a score line")
		}
		if !pred.SubmittedAt.Equal(now) {
			t.Fatalf("SubmittedAt = %s, want %s", pred.SubmittedAt, now)
		}
	})

	t.Run("exact-score pick accepted", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		pred, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:    "user-1",
			MatchID:   "match-1",
			GroupID:   "group-1",
			Winner:    result.WinnerDraw,
			HomeScore: intPtr(1),
			AwayScore: intPtr(1),
		})
		if err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if !pred.HasExactScore() {
			t.Fatal("expected an exact-score pick")
		}
	})

	t.Run("submission at the exact deadline accepted", func(t *testing.T) {
		stack := newStack(t, now.Add(time.Hour))

		_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:  "user-1",
			MatchID: "match-1",
			GroupID: "group-1",
			Winner:  result.WinnerAway,
		})
		if err != nil {
			t.Fatalf("Submit at the deadline should be accepted, got: %v", err)
		}
	})

	t.Run("submission past the deadline rejected", func(t *testing.T) {
		stack := newStack(t, now.Add(time.Hour-time.Second))

		_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:  "user-1",
			MatchID: "match-1",
			GroupID: "group-1",
			Winner:  result.WinnerHome,
		})
		if !errors.Is(err, ErrSubmissionClosed) {
			t.Fatalf("expected ErrSubmissionClosed, got %v", err)
		}
	})

	t.Run("duplicate pick in the same group rejected", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		input := SubmitPredictionInput{
			UserID:  "user-1",
			MatchID: "match-1",
			GroupID: "group-1",
			Winner:  result.WinnerHome,
		}
		if _, err := stack.predictionSvc.Submit(t.Context(), input); err != nil {
			t.Fatalf("first Submit returned error: %v", err)
		}

		input.Winner = result.WinnerAway
		if _, err := stack.predictionSvc.Submit(t.Context(), input); !errors.Is(err, ErrDuplicatePrediction) {
			t.Fatalf("expected ErrDuplicatePrediction, got %v", err)
		}
	})

	t.Run("same user may predict in another group", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		for _, groupID := range []string{"group-1", "group-2"} {
			_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
				UserID:  "user-1",
				MatchID: "match-1",
				GroupID: groupID,
				Winner:  result.WinnerHome,
			})
			if err != nil {
				t.Fatalf("Submit in %s returned error: %v", groupID, err)
			}
		}
	})

	t.Run("unknown winner pick rejected", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:  "user-1",
			MatchID: "match-1",
			GroupID: "group-1",
			Winner:  result.Winner("BOTH"),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("half a score line rejected", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:    "user-1",
			MatchID:   "match-1",
			GroupID:   "group-1",
			Winner:    result.WinnerHome,
			HomeScore: intPtr(2),
		})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("negative predicted score rejected", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:    "user-1",
			MatchID:   "match-1",
			GroupID:   "group-1",
			Winner:    result.WinnerHome,
			HomeScore: intPtr(-1),
			AwayScore: intPtr(0),
		})
		if !errors.Is(err, ErrInvalidScore) {
			t.Fatalf("expected ErrInvalidScore, got %v", err)
		}
	})

	t.Run("unknown match rejected", func(t *testing.T) {
		stack := newStack(t, now.Add(3*time.Hour))

		_, err := stack.predictionSvc.Submit(t.Context(), SubmitPredictionInput{
			UserID:  "user-1",
			MatchID: "match-missing",
			GroupID: "group-1",
			Winner:  result.WinnerHome,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
