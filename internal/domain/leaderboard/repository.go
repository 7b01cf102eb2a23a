package leaderboard

import "context"

type Repository interface {
	GetEntry(ctx context.Context, groupID, userID string) (Entry, bool, error)
	UpsertEntry(ctx context.Context, entry Entry) error
	ListByGroup(ctx context.Context, groupID string) ([]Entry, error)
	ReplaceByGroup(ctx context.Context, groupID string, entries []Entry) error
}
