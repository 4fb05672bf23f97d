package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pmos/internal/gate"
)

func TestProxyForwardsAllowedRequests(t *testing.T) {
	var seenUser, seenRole, seenHost, seenFor string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = r.Header.Get(gate.UserIDHeader)
		seenRole = r.Header.Get(gate.RoleHeader)
		seenHost = r.Host
		seenFor = r.Header.Get("X-Forwarded-For")
		_, _ = io.WriteString(w, "page "+r.URL.Path)
	}))
	defer upstream.Close()

	deps := newTestDeps(t)
	s, err := NewServer(deps, Config{UpstreamURL: upstream.URL})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "http://pmos.example.com/dashboard/vision", nil)
	r.Header.Set("Authorization", "Bearer U1")
	r.Header.Set(gate.UserIDHeader, "spoofed")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page /dashboard/vision", rec.Body.String())
	assert.Equal(t, "U1", seenUser)
	assert.Equal(t, "manager", seenRole)
	assert.Equal(t, "pmos.example.com", seenHost)
	assert.NotEmpty(t, seenFor)
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.UpstreamRequests.WithLabelValues("200")))
}

func TestProxyPublicPageAnonymous(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(gate.UserIDHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	s, err := NewServer(newTestDeps(t), Config{UpstreamURL: upstream.URL})
	require.NoError(t, err)

	rec := get(t, s.Handler(), "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	deps := newTestDeps(t)
	s, err := NewServer(deps, Config{UpstreamURL: url})
	require.NoError(t, err)

	rec := get(t, s.Handler(), "/", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Bad Gateway"}`, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.UpstreamRequests.WithLabelValues("502")))
}
