package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func claimsFor(subject string, expires time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(expires.Add(-time.Hour)),
		},
		Email: subject + "@example.com",
		Role:  "authenticated",
	}
}

func TestJWTVerifier(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := NewJWTVerifier(testSecret, "authenticated")
	v.now = func() time.Time { return now }

	noExpiry := claimsFor("u1", now.Add(time.Hour))
	noExpiry.ExpiresAt = nil

	wrongAudience := claimsFor("u1", now.Add(time.Hour))
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr bool
	}{
		{"valid", signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("u1", now.Add(time.Hour))), "u1", false},
		{"within leeway", signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("u1", now.Add(-10*time.Second))), "u1", false},
		{"expired", signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("u1", now.Add(-time.Hour))), "", true},
		{"wrong secret", signToken(t, "another-secret-entirely-32-characters!!", jwt.SigningMethodHS256, claimsFor("u1", now.Add(time.Hour))), "", true},
		{"wrong algorithm", signToken(t, testSecret, jwt.SigningMethodHS512, claimsFor("u1", now.Add(time.Hour))), "", true},
		{"no subject", signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("", now.Add(time.Hour))), "", true},
		{"no expiry", signToken(t, testSecret, jwt.SigningMethodHS256, noExpiry), "", true},
		{"wrong audience", signToken(t, testSecret, jwt.SigningMethodHS256, wrongAudience), "", true},
		{"garbage", "not-a-jwt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTokenInvalid)
				assert.True(t, errors.HasCode(err, errors.ErrCodeAuthTokenInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id.UserID)
			assert.Equal(t, "u1@example.com", id.Email)
			assert.Equal(t, "authenticated", id.Role)
			assert.False(t, id.ExpiresAt.IsZero())
		})
	}
}

func TestJWTVerifierWithoutAudience(t *testing.T) {
	v := NewJWTVerifier(testSecret, "")
	claims := claimsFor("u2", time.Now().Add(time.Hour))
	claims.Audience = nil

	id, err := v.Verify(context.Background(), signToken(t, testSecret, jwt.SigningMethodHS256, claims))

	require.NoError(t, err)
	assert.Equal(t, "u2", id.UserID)
}
