package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kpicli/internal/gitsync"
)

// MockPusher is a mock for the Pusher interface
type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, paths ...string) (gitsync.Outcome, error) {
	args := m.Called(ctx, paths)
	return args.Get(0).(gitsync.Outcome), args.Error(1)
}
