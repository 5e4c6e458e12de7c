package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockResourceGateway мок для ResourceGateway
type MockResourceGateway[T any] struct {
	mock.Mock
}

func (m *MockResourceGateway[T]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockResourceGateway[T]) Create(ctx context.Context, record T) (T, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		var zero T
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockResourceGateway[T]) Update(ctx context.Context, id string, record T) (T, error) {
	args := m.Called(ctx, id, record)
	if args.Get(0) == nil {
		var zero T
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockResourceGateway[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
