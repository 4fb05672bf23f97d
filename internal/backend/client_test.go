package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		URL:        server.URL + "/",
		AnonKey:    "anon-key",
		ServiceKey: "service-key",
	})
	require.NoError(t, err)
	return client
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing url", Config{AnonKey: "k"}},
		{"relative url", Config{URL: "localhost", AnonKey: "k"}},
		{"missing keys", Config{URL: "https://x.supabase.co"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
		})
	}
}

func TestNewClientTrimsURL(t *testing.T) {
	c, err := NewClient(Config{URL: "https://x.supabase.co/", AnonKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://x.supabase.co", c.URL())
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/", r.URL.Path)
			assert.Equal(t, "service-key", r.Header.Get("apikey"))
			w.WriteHeader(http.StatusOK)
		})
		assert.NoError(t, c.Health(context.Background()))
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		err := c.Health(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeBackendStatus))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c, err := NewClient(Config{URL: url, AnonKey: "k"})
		require.NoError(t, err)
		err = c.Health(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeBackendRequest))
	})
}
