package auth

import (
	"net/http"

	"github.com/felixgeelhaar/pmos/internal/errors"
	"github.com/felixgeelhaar/pmos/internal/metrics"
)

// Resolver answers "is there a current user and what is their id" for a
// request.
type Resolver struct {
	verifier   Verifier
	cookieName string
	metrics    *metrics.Metrics
}

// NewResolver creates a Resolver. An empty cookieName uses DefaultCookieName.
func NewResolver(verifier Verifier, cookieName string, m *metrics.Metrics) *Resolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Resolver{verifier: verifier, cookieName: cookieName, metrics: m}
}

// Resolve returns the identity of r. A missing or invalid token yields
// (nil, nil): the request is anonymous. An error is returned only when the
// token could not be checked, and matches AUTH-002.
func (res *Resolver) Resolve(r *http.Request) (*Identity, error) {
	token := ExtractToken(r, res.cookieName)
	if token == "" {
		res.metrics.ObserveIdentity("anonymous")
		return nil, nil
	}

	id, err := res.verifier.Verify(r.Context(), token)
	switch {
	case err == nil && id != nil:
		res.metrics.ObserveIdentity("authenticated")
		return id, nil
	case err == nil, errors.HasCode(err, errors.ErrCodeAuthTokenInvalid):
		res.metrics.ObserveIdentity("anonymous")
		return nil, nil
	default:
		res.metrics.ObserveIdentity("unavailable")
		return nil, errors.NewProviderUnavailableError(err)
	}
}

// CookieName returns the session cookie name.
func (res *Resolver) CookieName() string {
	return res.cookieName
}
