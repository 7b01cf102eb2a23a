package member

import "time"

// Membership links a user to a group. RegisteredAt feeds the leaderboard
// tie-break and is owned by the membership collaborator.
type Membership struct {
	GroupID      string
	UserID       string
	RegisteredAt time.Time
}
