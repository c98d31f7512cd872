package mocks

import (
	"context"

	"hub-notifier/internal/service"

	"github.com/stretchr/testify/mock"
)

// Notifier - мок handler.Notifier
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, req service.NotifyRequest) (*service.NotifyResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*service.NotifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}
