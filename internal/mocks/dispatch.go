package mocks

import (
	"context"

	"hub-notifier/internal/messaging"
	"hub-notifier/internal/service"

	"github.com/stretchr/testify/mock"
)

// Dispatcher - мок service.Dispatcher
type Dispatcher struct {
	mock.Mock
	ModeName string
}

func (m *Dispatcher) Dispatch(ctx context.Context, job messaging.PushJob) service.Outcome {
	args := m.Called(ctx, job)
	return args.Get(0).(service.Outcome)
}

func (m *Dispatcher) Mode() string {
	if m.ModeName == "" {
		return "inline"
	}
	return m.ModeName
}

// JobPublisher - мок service.JobPublisher
type JobPublisher struct {
	mock.Mock
}

func (m *JobPublisher) PublishPushJob(ctx context.Context, job messaging.PushJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
