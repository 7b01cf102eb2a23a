package match

import "context"

// Repository exposes read-only match lookups.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
}
