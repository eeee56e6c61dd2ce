package domain

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExecutionClient implements ExecutionClient for testing
type MockExecutionClient struct {
	mock.Mock
}

// Languages mocks the language listing
func (m *MockExecutionClient) Languages(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Execute mocks a code run
func (m *MockExecutionClient) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error) {
	args := m.Called(ctx, req)
	if fn, ok := args.Get(0).(func(context.Context, ExecutionRequest) *ExecutionResult); ok {
		return fn(ctx, req), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExecutionResult), args.Error(1)
}
