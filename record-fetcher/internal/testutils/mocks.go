package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/entities"
	"github.com/fernsky/digital-profile/record-fetcher/internal/domain/ports"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, dataset string) ([]entities.RecordEvent, error) {
	args := m.Called(ctx, dataset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RecordEvent), args.Error(1)
}

func (m *MockFetcher) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Produce(ctx context.Context, event entities.RecordEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProducer) ProduceBatch(ctx context.Context, events []entities.RecordEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockProducer) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, interval time.Duration, task ports.Task) error {
	args := m.Called(ctx, interval, task)
	return args.Error(0)
}

func (m *MockScheduler) Stop() {
	m.Called()
}
