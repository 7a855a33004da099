package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

// MockTransactor runs fn directly. It does not roll back the in-memory stores.
type MockTransactor struct {
	mu sync.Mutex

	Calls      int
	BeginError error
}

var _ ports.Transactor = (*MockTransactor)(nil)

func NewMockTransactor() *MockTransactor {
	return &MockTransactor{}
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	beginErr := m.BeginError
	m.mu.Unlock()

	if beginErr != nil {
		return beginErr
	}
	return fn(ctx)
}

// MockOutbox implements ports.OutboxWriter, keeping events in memory.
type MockOutbox struct {
	mu sync.Mutex

	Events       []ports.OutboxEvent
	EnqueueError error
}

var _ ports.OutboxWriter = (*MockOutbox)(nil)

func NewMockOutbox() *MockOutbox {
	return &MockOutbox{}
}

func (m *MockOutbox) Enqueue(ctx context.Context, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EnqueueError != nil {
		return m.EnqueueError
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.Events = append(m.Events, ports.OutboxEvent{EventType: eventType, Payload: body})
	return nil
}

func (m *MockOutbox) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}
