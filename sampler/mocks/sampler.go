package mocks

import (
	"context"
	"time"

	"github.com/absmach/memmon/pkg/record"
	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of the sampler.Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, pid int32, interval, duration time.Duration) (record.SeriesRecord, error) {
	args := m.Called(ctx, pid, interval, duration)
	return args.Get(0).(record.SeriesRecord), args.Error(1)
}
