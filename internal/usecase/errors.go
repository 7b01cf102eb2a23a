package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// Fatal at startup: a deadline or worker setting that can never work.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Caller errors from the result state machine. Never retried.
	ErrInvalidMatchState  = errors.New("invalid match state")
	ErrInvalidResultState = errors.New("invalid result state")
	ErrAlreadyConfirmed   = errors.New("result already confirmed")
	ErrResultFinalized    = errors.New("result finalized")
	ErrInvalidScore       = errors.New("invalid score")

	ErrDuplicatePrediction = errors.New("prediction already exists for user, match and group")
	ErrSubmissionClosed    = errors.New("prediction submission window closed")

	// Internal: a settlement batch that did not fully complete. Safe to
	// retry because per-prediction settlement is idempotent.
	ErrSettlementPartial = errors.New("settlement partially failed")
)
