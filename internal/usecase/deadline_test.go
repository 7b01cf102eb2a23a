package usecase

import (
	"errors"
	"testing"
	"time"
)

func TestDeadlinePolicy_IsSubmissionAllowed(t *testing.T) {
	kickoff := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	policy := DefaultDeadlinePolicy()

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before the window", kickoff.Add(-3 * time.Hour), true},
		{"exactly at the deadline", kickoff.Add(-time.Hour), true},
		{"one second past the deadline", kickoff.Add(-time.Hour + time.Second), false},
		{"at kickoff", kickoff, false},
		{"after kickoff", kickoff.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.IsSubmissionAllowed(tt.now, kickoff); got != tt.want {
				t.Fatalf("IsSubmissionAllowed(%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestNewDeadlinePolicy(t *testing.T) {
	t.Run("custom cutoff", func(t *testing.T) {
		policy, err := NewDeadlinePolicy(15 * time.Minute)
		if err != nil {
			t.Fatalf("NewDeadlinePolicy returned error: %v", err)
		}
		if policy.Cutoff() != 15*time.Minute {
			t.Fatalf("Cutoff() = %s, want 15m", policy.Cutoff())
		}
	})

	t.Run("zero cutoff closes at kickoff", func(t *testing.T) {
		policy, err := NewDeadlinePolicy(0)
		if err != nil {
			t.Fatalf("NewDeadlinePolicy returned error: %v", err)
		}
		kickoff := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
		if !policy.IsSubmissionAllowed(kickoff, kickoff) {
			t.Fatal("submission at kickoff should be allowed with zero cutoff")
		}
		if policy.IsSubmissionAllowed(kickoff.Add(time.Nanosecond), kickoff) {
			t.Fatal("submission after kickoff should be rejected with zero cutoff")
		}
	})

	t.Run("negative cutoff rejected", func(t *testing.T) {
		_, err := NewDeadlinePolicy(-time.Minute)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
