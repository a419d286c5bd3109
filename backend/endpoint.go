// Package backend holds the pieces shared by the remote key/value and secret
// backends.
package backend

import (
	"net"
	"net/url"
	"strconv"
)

// Endpoint is the resolved address of an HTTP backend.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
}

// ResolveEndpoint derives an endpoint from a base URL (falling back to
// fallback when empty) and optional scheme, host, and port overrides. Zero
// overrides are ignored. When the URL carries no port, 80 is used for http
// and 443 otherwise.
func ResolveEndpoint(
	rawURL, fallback, scheme, host string,
	port int,
) (Endpoint, error) {
	if rawURL == "" {
		rawURL = fallback
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, err
	}

	ep := Endpoint{Scheme: u.Scheme, Host: u.Hostname()}

	if p := u.Port(); p != "" {
		ep.Port, err = strconv.Atoi(p)
		if err != nil {
			return Endpoint{}, err
		}
	} else if u.Scheme == "http" {
		ep.Port = 80
	} else {
		ep.Port = 443
	}

	if scheme != "" {
		ep.Scheme = scheme
	}

	if host != "" {
		ep.Host = host
	}

	if port != 0 {
		ep.Port = port
	}

	return ep, nil
}

// Address returns "host:port".
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// String returns "scheme://host:port".
func (e Endpoint) String() string {
	return e.Scheme + "://" + e.Address()
}
