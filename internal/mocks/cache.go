package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// MockMemberCache implements ports.MemberCache.
type MockMemberCache struct {
	mu sync.Mutex

	members map[string]domain.Member

	GetCalls int
	SetCalls int

	GetError error
	SetError error
}

var _ ports.MemberCache = (*MockMemberCache)(nil)

func NewMockMemberCache() *MockMemberCache {
	return &MockMemberCache{members: make(map[string]domain.Member)}
}

func (m *MockMemberCache) Get(ctx context.Context, nationalID string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetError != nil {
		return nil, m.GetError
	}
	member, ok := m.members[nationalID]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (m *MockMemberCache) Set(ctx context.Context, member *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetError != nil {
		return m.SetError
	}
	m.members[member.NationalID] = *member
	return nil
}

func (m *MockMemberCache) Has(nationalID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.members[nationalID]
	return ok
}
