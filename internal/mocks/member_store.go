// Package mocks provides in-memory implementations of the core ports for tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// MockMemberStore implements ports.MemberStore on a map keyed by national id.
type MockMemberStore struct {
	mu sync.RWMutex

	members map[string]domain.Member

	// Call tracking for verification
	FindCalls   []string
	InsertCalls []domain.Member

	// Error injection
	FindError   error
	InsertError error
}

var _ ports.MemberStore = (*MockMemberStore)(nil)

func NewMockMemberStore() *MockMemberStore {
	return &MockMemberStore{members: make(map[string]domain.Member)}
}

// Seed stores a member directly, bypassing call tracking.
func (m *MockMemberStore) Seed(member domain.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.NationalID] = member
}

func (m *MockMemberStore) FindByNationalID(ctx context.Context, nationalID string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindCalls = append(m.FindCalls, nationalID)
	if m.FindError != nil {
		return nil, m.FindError
	}

	member, ok := m.members[nationalID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &member, nil
}

func (m *MockMemberStore) Insert(ctx context.Context, member domain.Member) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, member)
	if m.InsertError != nil {
		return nil, m.InsertError
	}
	if _, exists := m.members[member.NationalID]; exists {
		return nil, ports.ErrConflict
	}

	member.RegisteredAt = time.Now()
	m.members[member.NationalID] = member
	return &member, nil
}

func (m *MockMemberStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}

func (m *MockMemberStore) Get(nationalID string) (domain.Member, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	member, ok := m.members[nationalID]
	return member, ok
}
