package mocks

import (
	"context"

	"github.com/absmach/memmon/pkg/run"
	"github.com/stretchr/testify/mock"
)

// MockRunRepository is a mock implementation of the storage.RunRepository interface
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, r run.Run) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRunRepository) Get(ctx context.Context, id string) (run.Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(run.Run), args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, offset, limit uint64) ([]run.Run, uint64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]run.Run), args.Get(1).(uint64), args.Error(2)
}

func (m *MockRunRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
