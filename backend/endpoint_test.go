package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		scheme   string
		host     string
		port     int
		expected string
	}{
		{"fallback", "", "", "", 0, "http://127.0.0.1:8500"},
		{"explicit port", "https://vault.local:8200", "", "", 0, "https://vault.local:8200"},
		{"http default port", "http://consul.local", "", "", 0, "http://consul.local:80"},
		{"https default port", "https://consul.local", "", "", 0, "https://consul.local:443"},
		{"overrides", "http://a:1", "https", "b", 2, "https://b:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := ResolveEndpoint(tt.url, "http://127.0.0.1:8500", tt.scheme, tt.host, tt.port)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ep.String())
		})
	}
}

func TestResolveEndpoint_IPv6Address(t *testing.T) {
	ep, err := ResolveEndpoint("http://[::1]:8500", "", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "[::1]:8500", ep.Address())
}

func TestResolveEndpoint_InvalidURL(t *testing.T) {
	_, err := ResolveEndpoint("http://[bad", "", "", "", 0)
	require.Error(t, err)
}
