package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/member"
)

type MemberRepository struct {
	mu      sync.RWMutex
	byGroup map[string]map[string]member.Membership
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{
		byGroup: make(map[string]map[string]member.Membership),
	}
}

func (r *MemberRepository) Get(_ context.Context, groupID, userID string) (member.Membership, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.byGroup[groupID]
	if !ok {
		return member.Membership{}, false, nil
	}
	m, ok := group[userID]
	return m, ok, nil
}

func (r *MemberRepository) ListByGroup(_ context.Context, groupID string) ([]member.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.byGroup[groupID]
	out := make([]member.Membership, 0, len(group))
	for _, m := range group {
		out = append(out, m)
	}
	return out, nil
}

func (r *MemberRepository) Put(_ context.Context, m member.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.byGroup[m.GroupID]
	if !ok {
		group = make(map[string]member.Membership)
		r.byGroup[m.GroupID] = group
	}
	group[m.UserID] = m
	return nil
}
