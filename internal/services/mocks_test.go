package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labordash/internal/dataset"
	"labordash/pkg/contracts/domain"
	"labordash/pkg/contracts/events"
)

type MockTableSource struct {
	mock.Mock
}

func (m *MockTableSource) Get(ctx context.Context, path string) (*domain.Table, error) {
	args := m.Called(ctx, path)
	table, _ := args.Get(0).(*domain.Table)
	return table, args.Error(1)
}

func (m *MockTableSource) Reload(ctx context.Context, path string) (*domain.Table, error) {
	args := m.Called(ctx, path)
	table, _ := args.Get(0).(*domain.Table)
	return table, args.Error(1)
}

func (m *MockTableSource) Stats() dataset.CacheStats {
	return m.Called().Get(0).(dataset.CacheStats)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(msg events.WebSocketMessage) {
	m.Called(msg)
}

type fakeClients int

func (f fakeClients) ClientCount() int { return int(f) }
