// Package auth resolves the session identity of an incoming request. It only
// reads credentials issued by the backend's auth service; it never issues
// or stores them.
package auth

import (
	"context"
	"time"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

// Identity is the authenticated user behind a request.
type Identity struct {
	// UserID is the backend user id (the token subject)
	UserID string `json:"user_id"`

	// Email is the user's email address, when the token carries one
	Email string `json:"email,omitempty"`

	// Role is the auth role claim (e.g. "authenticated"), not the PMOS role
	Role string `json:"role,omitempty"`

	// ExpiresAt is the token expiry, zero when unknown
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ErrTokenInvalid matches errors for tokens that are malformed, expired or
// rejected. Requests carrying such tokens are treated as anonymous.
var ErrTokenInvalid = errors.New(errors.ErrCodeAuthTokenInvalid, "session token is invalid or expired")

// Verifier turns an access token into an Identity. Verify returns an error
// matching ErrTokenInvalid for bad tokens; any other error means the token
// could not be checked.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (*Identity, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, token string) (*Identity, error) {
	return f(ctx, token)
}

type contextKey string

const identityContextKey contextKey = "auth_identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext returns the identity stored by WithIdentity, or nil for
// anonymous requests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}
