package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AdminInfo describes an authenticated admin session.
type AdminInfo struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authorizer validates bearer tokens for the admin surface.
type Authorizer interface {
	// Authorize validates a token and returns the admin session it
	// belongs to, or an error when the token is missing, unknown, or
	// expired.
	Authorize(ctx context.Context, token string) (*AdminInfo, error)
}

// DefaultTokenTTL bounds how long an admin login stays valid.
const DefaultTokenTTL = 12 * time.Hour

// TokenAuthorizer issues and validates in-memory bearer tokens against a
// single configured admin credential pair.
type TokenAuthorizer struct {
	mu       sync.Mutex
	tokens   map[string]AdminInfo
	username string
	password string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenAuthorizer builds an authorizer for the configured credentials.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenAuthorizer(username, password string, ttl time.Duration) *TokenAuthorizer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenAuthorizer{
		tokens:   make(map[string]AdminInfo),
		username: username,
		password: password,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login checks the credentials and mints a bearer token. An empty
// configured password disables login entirely so an unset
// ADMIN_PASSWORD never turns into a working credential.
func (a *TokenAuthorizer) Login(_ context.Context, username, password string) (string, error) {
	if a.password == "" {
		return "", ErrInvalidCredentials
	}
	if username != a.username || password != a.password {
		return "", ErrInvalidCredentials
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	token := uuid.NewString()
	a.tokens[token] = AdminInfo{
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.ttl),
	}
	return token, nil
}

// Authorize implements Authorizer. Expired tokens are pruned on sight.
func (a *TokenAuthorizer) Authorize(_ context.Context, token string) (*AdminInfo, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	info, ok := a.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	if a.now().After(info.ExpiresAt) {
		delete(a.tokens, token)
		return nil, ErrExpiredToken
	}
	return &info, nil
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (a *TokenAuthorizer) Logout(_ context.Context, token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}
