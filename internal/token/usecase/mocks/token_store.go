// Package mocks provides mock implementations for testing token store consumers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	tokenDomain "github.com/allisson/tokenstore/internal/token/domain"
)

// MockTokenStore is a mock implementation of TokenStore for testing.
type MockTokenStore struct {
	mock.Mock
}

// Create mocks the Create method of TokenStore.
func (m *MockTokenStore) Create(
	ctx context.Context,
	tokenID string,
	payload map[string]any,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, tokenID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

// Fetch mocks the Fetch method of TokenStore.
func (m *MockTokenStore) Fetch(ctx context.Context, tokenID string) (*tokenDomain.Token, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

// Revoke mocks the Revoke method of TokenStore.
func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// ListByOwner mocks the ListByOwner method of TokenStore.
func (m *MockTokenStore) ListByOwner(ctx context.Context, ownerID, scopeID string) ([]string, error) {
	args := m.Called(ctx, ownerID, scopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ListRevoked mocks the ListRevoked method of TokenStore.
func (m *MockTokenStore) ListRevoked(ctx context.Context) ([]*tokenDomain.RevokedToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokenDomain.RevokedToken), args.Error(1)
}

// PurgeExpired mocks the PurgeExpired method of TokenStore.
func (m *MockTokenStore) PurgeExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
