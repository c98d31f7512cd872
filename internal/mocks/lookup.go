package mocks

import (
	"context"

	"hub-notifier/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Lookup - мок events.Lookup
type Lookup struct {
	mock.Mock
}

func (m *Lookup) ProjectByID(ctx context.Context, id string) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Lookup) BugByID(ctx context.Context, id string) (*domain.Bug, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*domain.Bug), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Lookup) MembershipByID(ctx context.Context, id string) (*domain.Membership, error) {
	args := m.Called(ctx, id)
	if mm := args.Get(0); mm != nil {
		return mm.(*domain.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}
