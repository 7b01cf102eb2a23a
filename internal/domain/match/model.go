package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
	StatusPostponed Status = "POSTPONED"
	StatusCancelled Status = "CANCELLED"
)

// Match is owned by the scheduling collaborator and read-only here.
type Match struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     Status
}

func NormalizeStatus(value string) Status {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status Status) bool {
	switch status {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsPlayingStatus(status Status) bool {
	switch status {
	case StatusScheduled, StatusLive, "IN_PLAY", "HT", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}
