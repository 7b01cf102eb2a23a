package result

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned when an update carries a stale version.
var ErrVersionConflict = errors.New("result version conflict")

type Repository interface {
	Create(ctx context.Context, res Result) error
	GetByID(ctx context.Context, resultID string) (Result, bool, error)
	GetByMatch(ctx context.Context, matchID string) (Result, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]Result, error)

	// Update applies res only when the stored row still has expectedVersion,
	// bumping the version by one. Concurrent writers lose with
	// ErrVersionConflict.
	Update(ctx context.Context, res Result, expectedVersion int64) (Result, error)
}
