package usecase

import (
	"fmt"
	"time"
)

// DefaultCutoffWindow closes submissions one hour before kickoff.
const DefaultCutoffWindow = time.Hour

// DeadlinePolicy decides whether a prediction submission is still
// accepted for a match. Pure; competitions may carry their own cutoff.
type DeadlinePolicy struct {
	cutoff time.Duration
}

func NewDeadlinePolicy(cutoff time.Duration) (DeadlinePolicy, error) {
	if cutoff < 0 {
		return DeadlinePolicy{}, fmt.Errorf("%w: cutoff window cannot be negative", ErrInvalidConfig)
	}
	return DeadlinePolicy{cutoff: cutoff}, nil
}

func DefaultDeadlinePolicy() DeadlinePolicy {
	return DeadlinePolicy{cutoff: DefaultCutoffWindow}
}

// IsSubmissionAllowed accepts submissions up to and including the instant
// exactly cutoff before kickoff.
func (p DeadlinePolicy) IsSubmissionAllowed(now, kickoff time.Time) bool {
	deadline := kickoff.Add(-p.cutoff)
	return !now.After(deadline)
}

func (p DeadlinePolicy) Cutoff() time.Duration {
	return p.cutoff
}
