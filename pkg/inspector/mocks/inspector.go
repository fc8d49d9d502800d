package mocks

import (
	"context"

	"github.com/absmach/memmon/pkg/inspector"
	"github.com/stretchr/testify/mock"
)

var _ inspector.Inspector = (*MockInspector)(nil)

// MockInspector is a mock implementation of the Inspector interface for testing
type MockInspector struct {
	mock.Mock
}

// Inspect returns the scripted result for pid
func (m *MockInspector) Inspect(ctx context.Context, pid int32) (inspector.Result, error) {
	args := m.Called(ctx, pid)
	return args.Get(0).(inspector.Result), args.Error(1)
}
