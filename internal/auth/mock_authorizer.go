package auth

import (
	"context"
	"time"
)

const (
	// LocalDevToken is the hardcoded admin token for local development only.
	LocalDevToken = "ufo_local_dev_token"
)

// MockAuthorizer recognizes only LocalDevToken. It backs the dev-mode
// admin surface and the handler tests.
type MockAuthorizer struct{}

// NewMockAuthorizer creates a MockAuthorizer for local development.
func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

// Authorize validates the hardcoded token.
func (m *MockAuthorizer) Authorize(_ context.Context, token string) (*AdminInfo, error) {
	if token != LocalDevToken {
		return nil, ErrInvalidToken
	}
	return &AdminInfo{
		Username:  "dev-admin",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(DefaultTokenTTL),
	}, nil
}
