package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

// ErrUnauthorized is returned by GetUser when the backend rejects the token.
var ErrUnauthorized = stderrors.New("backend: access token rejected")

// User is the subset of the auth user object the gate needs.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// GetUser returns the user owning accessToken. An invalid or expired token
// yields ErrUnauthorized; any other failure means the provider could not
// answer.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/user", nil, c.publicKey())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.do(ctx, "auth.user", "user", req)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, statusError("auth user", resp)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackendDecode, "failed to decode auth user", err)
	}
	if u.ID == "" {
		return nil, ErrUnauthorized
	}
	return &u, nil
}
