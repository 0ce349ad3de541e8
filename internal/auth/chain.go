package auth

import "context"

// Chain tries each authorizer in order and returns the first success.
// Dev mode runs the mock authorizer in front of the token authorizer so
// the hardcoded local token keeps working alongside real logins.
type Chain []Authorizer

// Authorize implements Authorizer.
func (c Chain) Authorize(ctx context.Context, token string) (*AdminInfo, error) {
	var last error = ErrInvalidToken
	for _, a := range c {
		info, err := a.Authorize(ctx, token)
		if err == nil {
			return info, nil
		}
		last = err
	}
	return nil, last
}
