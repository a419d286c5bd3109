package vault

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/j2env/pkg"
)

const token = "s.abcdef"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	routes := map[string]string{
		"/v1/secret/data/app": `{
			"request_id": "r1", "lease_id": "", "renewable": false, "lease_duration": 0,
			"data": {"data": {"password": "s3cr3t", "port": 5432}, "metadata": {"version": 2}},
			"wrap_info": null, "warnings": null, "auth": null
		}`,
		"/v1/kv/app": `{
			"request_id": "r2", "lease_id": "", "renewable": false, "lease_duration": 2764800,
			"data": {"user": "admin"},
			"wrap_info": null, "warnings": null, "auth": null
		}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("X-Vault-Token") != token {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))

			return
		}

		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))

			return
		}

		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Read_Backends(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name    string
		backend Backend
		path    string
		check   func(t *testing.T, v any)
	}{
		{
			name:    "kv2",
			backend: KV2,
			path:    "secret/app",
			check: func(t *testing.T, v any) {
				assert.Equal(t, map[string]any{"password": "s3cr3t", "port": int64(5432)}, v)
			},
		},
		{
			name:    "kv1",
			backend: KV1,
			path:    "kv/app",
			check: func(t *testing.T, v any) {
				assert.Equal(t, map[string]any{"user": "admin"}, v)
			},
		},
		{
			name:    "raw",
			backend: Raw,
			path:    "kv/app",
			check: func(t *testing.T, v any) {
				m, ok := v.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "r2", m["request_id"])
				assert.Equal(t, int64(2764800), m["lease_duration"])
				assert.Equal(t, map[string]any{"user": "admin"}, m["data"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(Options{URL: srv.URL, Token: token, Backend: tt.backend})
			require.NoError(t, err)

			v, err := c.Read(t.Context(), tt.path)
			require.NoError(t, err)
			tt.check(t, v)
		})
	}
}

func TestClient_Read_StatusErrors(t *testing.T) {
	srv := newServer(t)

	c, err := New(Options{URL: srv.URL, Token: "wrong"})
	require.NoError(t, err)

	_, err = c.Read(t.Context(), "kv/app")
	require.ErrorIs(t, err, pkg.ErrBackendStatus)
	assert.Contains(t, err.Error(), "Forbidden")

	c, err = New(Options{URL: srv.URL, Token: token})
	require.NoError(t, err)

	_, err = c.Read(t.Context(), "kv/missing")
	require.ErrorIs(t, err, pkg.ErrBackendStatus)
	assert.Contains(t, err.Error(), "Path not found")
}

func TestClient_Read_ConnectFailure(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	c, err := New(Options{URL: url, Token: token})
	require.NoError(t, err)

	_, err = c.Read(t.Context(), "kv/app")
	require.ErrorIs(t, err, pkg.ErrConnect)
	assert.Contains(t, err.Error(), "/v1/kv/app")
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Options{Backend: "kv3"})
	assert.ErrorIs(t, err, pkg.ErrUnknownBackend)
}

func TestNew_DefaultEndpoint(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://127.0.0.1:8200", c.Endpoint().String())
}
