package auth

import "errors"

var (
	// ErrMissingToken is returned when no bearer token accompanies the request.
	ErrMissingToken = errors.New("authorization token required")

	// ErrInvalidToken is returned for tokens the service never issued.
	ErrInvalidToken = errors.New("invalid authorization token")

	// ErrExpiredToken is returned for tokens past their TTL.
	ErrExpiredToken = errors.New("authorization token expired")

	// ErrInvalidCredentials is returned when a login attempt fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
