package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndAuthorize(t *testing.T) {
	a := NewTokenAuthorizer("admin", "hunter2", time.Hour)
	ctx := context.Background()

	token, err := a.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	info, err := a.Authorize(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := NewTokenAuthorizer("admin", "hunter2", time.Hour)

	_, err := a.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledWithoutConfiguredPassword(t *testing.T) {
	a := NewTokenAuthorizer("admin", "", time.Hour)

	// An unset password must not match an empty submitted password.
	_, err := a.Login(context.Background(), "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthorizeUnknownAndEmptyTokens(t *testing.T) {
	a := NewTokenAuthorizer("admin", "hunter2", time.Hour)
	ctx := context.Background()

	_, err := a.Authorize(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Authorize(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestTokenExpiry(t *testing.T) {
	a := NewTokenAuthorizer("admin", "hunter2", time.Minute)
	now := time.Now()
	a.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := a.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = a.Authorize(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// Expired tokens are pruned, so a retry reports invalid.
	_, err = a.Authorize(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	a := NewTokenAuthorizer("admin", "hunter2", time.Hour)
	ctx := context.Background()

	token, err := a.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)

	a.Logout(ctx, token)
	_, err = a.Authorize(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractToken(r)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Bearer tok123")
	token, err := ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestMockAuthorizer(t *testing.T) {
	m := NewMockAuthorizer()
	ctx := context.Background()

	info, err := m.Authorize(ctx, LocalDevToken)
	require.NoError(t, err)
	assert.Equal(t, "dev-admin", info.Username)

	_, err = m.Authorize(ctx, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
