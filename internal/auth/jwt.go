package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

// SessionClaims are the claims of a backend-issued access token.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Email is the user's email address
	Email string `json:"email"`

	// Role is the database role the token grants (e.g. "authenticated")
	Role string `json:"role"`
}

// JWTVerifier validates HS256 access tokens locally with the backend's JWT
// secret, avoiding a network round trip per request.
type JWTVerifier struct {
	secret   []byte
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
// A non-empty audience must appear in the aud claim.
func NewJWTVerifier(secret, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		audience: audience,
		leeway:   30 * time.Second,
		now:      time.Now,
	}
}

// Verify parses and validates token.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthTokenInvalid, "token rejected", err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, errors.New(errors.ErrCodeAuthTokenInvalid, "token has no subject")
	}

	id := &Identity{
		UserID: subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
