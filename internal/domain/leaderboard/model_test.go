package leaderboard

import (
	"sort"
	"testing"
	"time"
)

func TestLess(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(24 * time.Hour)

	tests := []struct {
		name string
		a, b Entry
		want bool
	}{
		{
			name: "points decide first",
			a:    Entry{UserID: "a", Points: 5},
			b:    Entry{UserID: "b", Points: 9, ExactCount: 3},
			want: false,
		},
		{
			name: "exact count breaks a points tie",
			a:    Entry{UserID: "a", Points: 5, ExactCount: 1},
			b:    Entry{UserID: "b", Points: 5, ExactCount: 0, WinnerCount: 5},
			want: true,
		},
		{
			name: "winner count breaks an exact tie",
			a:    Entry{UserID: "a", Points: 5, ExactCount: 1, WinnerCount: 3},
			b:    Entry{UserID: "b", Points: 5, ExactCount: 1, WinnerCount: 2},
			want: true,
		},
		{
			name: "earlier registration breaks a full stat tie",
			a:    Entry{UserID: "a", Points: 5, RegisteredAt: early},
			b:    Entry{UserID: "b", Points: 5, RegisteredAt: late},
			want: true,
		},
		{
			name: "user id is the final tie-break",
			a:    Entry{UserID: "alice", Points: 5, RegisteredAt: early},
			b:    Entry{UserID: "bob", Points: 5, RegisteredAt: early},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Less(tt.a, tt.b); got != tt.want {
				t.Fatalf("Less(%s, %s) = %v, want %v", tt.a.UserID, tt.b.UserID, got, tt.want)
			}
			if tt.want && Less(tt.b, tt.a) {
				t.Fatalf("Less(%s, %s) and its inverse both true", tt.a.UserID, tt.b.UserID)
			}
		})
	}
}

func TestLessIsStrictTotalOrder(t *testing.T) {
	reg := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{UserID: "d", Points: 3, WinnerCount: 3, RegisteredAt: reg},
		{UserID: "a", Points: 3, ExactCount: 1, WinnerCount: 1, RegisteredAt: reg},
		{UserID: "c", Points: 3, WinnerCount: 3, RegisteredAt: reg},
		{UserID: "b", Points: 7, ExactCount: 2, WinnerCount: 3, RegisteredAt: reg},
	}

	sort.SliceStable(entries, func(i, j int) bool { return Less(entries[i], entries[j]) })

	want := []string{"b", "a", "c", "d"}
	for i, id := range want {
		if entries[i].UserID != id {
			t.Fatalf("position %d = %s, want %s", i, entries[i].UserID, id)
		}
	}

	// No pair compares equal in both directions with different users.
	for i := range entries {
		for j := range entries {
			if i == j {
				continue
			}
			if !Less(entries[i], entries[j]) && !Less(entries[j], entries[i]) {
				t.Fatalf("entries %s and %s are unordered", entries[i].UserID, entries[j].UserID)
			}
		}
	}
}
