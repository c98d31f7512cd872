package mocks

import (
	"context"

	"hub-notifier/internal/domain"
	"hub-notifier/internal/fcm"

	"github.com/stretchr/testify/mock"
)

// PushSender - мок fcm.Sender
type PushSender struct {
	mock.Mock
}

func (m *PushSender) Send(ctx context.Context, tokens []string, n domain.Notification) fcm.Result {
	args := m.Called(ctx, tokens, n)
	return args.Get(0).(fcm.Result)
}

func (m *PushSender) Driver() string {
	return "mock"
}
