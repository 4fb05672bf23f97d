package auth

import (
	"context"
	stderrors "errors"

	"github.com/felixgeelhaar/pmos/internal/backend"
	"github.com/felixgeelhaar/pmos/internal/errors"
)

// UserFetcher asks the backend who owns an access token.
type UserFetcher interface {
	GetUser(ctx context.Context, accessToken string) (*backend.User, error)
}

// RemoteVerifier validates tokens by asking the backend auth service.
// Used when no JWT secret is configured.
type RemoteVerifier struct {
	users UserFetcher
}

// NewRemoteVerifier creates a verifier backed by users.
func NewRemoteVerifier(users UserFetcher) *RemoteVerifier {
	return &RemoteVerifier{users: users}
}

// Verify resolves token through the backend.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	u, err := v.users.GetUser(ctx, token)
	if err != nil {
		if stderrors.Is(err, backend.ErrUnauthorized) {
			return nil, errors.Wrap(errors.ErrCodeAuthTokenInvalid, "token rejected by backend", err)
		}
		return nil, err
	}
	return &Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}
