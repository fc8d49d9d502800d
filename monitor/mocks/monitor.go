package mocks

import (
	"context"

	"github.com/absmach/memmon/monitor"
	"github.com/absmach/memmon/pkg/run"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of the monitor.Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Monitor(ctx context.Context, req monitor.Request) (monitor.Report, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(monitor.Report), args.Error(1)
}

func (m *MockService) GetRun(ctx context.Context, id string) (run.Run, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(run.Run), args.Error(1)
}

func (m *MockService) ListRuns(ctx context.Context, offset, limit uint64) (run.RunPage, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).(run.RunPage), args.Error(1)
}

func (m *MockService) DeleteRun(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
