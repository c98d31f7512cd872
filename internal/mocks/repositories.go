package mocks

import (
	"context"

	"hub-notifier/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MembershipReader - мок service.MembershipReader
type MembershipReader struct {
	mock.Mock
}

func (m *MembershipReader) MembershipByUserID(ctx context.Context, userID string) (*domain.Membership, error) {
	args := m.Called(ctx, userID)
	if mm := args.Get(0); mm != nil {
		return mm.(*domain.Membership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipReader) HubMemberIDs(ctx context.Context, hubID string) ([]string, error) {
	args := m.Called(ctx, hubID)
	if ids := args.Get(0); ids != nil {
		return ids.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipReader) HubMemberIDsExcept(ctx context.Context, hubID, userID string) ([]string, error) {
	args := m.Called(ctx, hubID, userID)
	if ids := args.Get(0); ids != nil {
		return ids.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// DeviceReader - мок service.DeviceReader
type DeviceReader struct {
	mock.Mock
}

func (m *DeviceReader) TokensByUserIDs(ctx context.Context, userIDs []string) ([]string, error) {
	args := m.Called(ctx, userIDs)
	if tokens := args.Get(0); tokens != nil {
		return tokens.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}
