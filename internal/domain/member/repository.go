package member

import "context"

type Repository interface {
	Get(ctx context.Context, groupID, userID string) (Membership, bool, error)
	ListByGroup(ctx context.Context, groupID string) ([]Membership, error)
}
