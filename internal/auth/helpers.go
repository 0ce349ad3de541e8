package auth

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// ExtractToken extracts the bearer token from the Authorization header.
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.Wrap(ErrMissingToken, "missing Authorization header")
	}

	// Expect "Bearer <token>" format
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.Wrap(ErrInvalidToken, "expected 'Bearer <token>'")
	}

	return parts[1], nil
}
