package leaderboard

import "time"

// Entry is one ranked leaderboard row, derived from settled predictions.
type Entry struct {
	GroupID      string
	UserID       string
	Points       int
	ExactCount   int
	WinnerCount  int
	RegisteredAt time.Time
	Rank         int
}

// Less is the display tie-break chain: points, exact-score count and
// winner count descending, then earlier registration, then user ID so the
// order is a strict total order.
func Less(a, b Entry) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.ExactCount != b.ExactCount {
		return a.ExactCount > b.ExactCount
	}
	if a.WinnerCount != b.WinnerCount {
		return a.WinnerCount > b.WinnerCount
	}
	if !a.RegisteredAt.Equal(b.RegisteredAt) {
		return a.RegisteredAt.Before(b.RegisteredAt)
	}
	return a.UserID < b.UserID
}
