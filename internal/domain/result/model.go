package result

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusDisputed  Status = "DISPUTED"
	StatusResolved  Status = "RESOLVED"
)

type Winner string

const (
	WinnerHome Winner = "HOME"
	WinnerAway Winner = "AWAY"
	WinnerDraw Winner = "DRAW"
)

type DisputePriority string

const (
	PriorityLow    DisputePriority = "LOW"
	PriorityNormal DisputePriority = "NORMAL"
	PriorityHigh   DisputePriority = "HIGH"
)

// Result is the official outcome record for one finished match.
// Soft states only; rows are never physically deleted.
type Result struct {
	ID          string
	MatchID     string
	HomeScore   int
	AwayScore   int
	Status      Status
	ConfirmedBy string
	ConfirmedAt *time.Time
	Dispute     *Dispute
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Dispute carries the metadata of an open or resolved dispute.
type Dispute struct {
	Reason      string
	EvidenceRef string
	Priority    DisputePriority
	FiledAt     time.Time
}

// transitions is the exhaustive table of legal status moves.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed},
	StatusConfirmed: {StatusDisputed, StatusResolved},
	StatusDisputed:  {StatusConfirmed, StatusResolved},
	StatusResolved:  {},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status Status) bool {
	return len(transitions[status]) == 0
}

func NormalizePriority(value DisputePriority) DisputePriority {
	switch value {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return value
	default:
		return PriorityNormal
	}
}
