// Package consul reads key/value subtrees from a Consul agent.
package consul

import (
	"context"
	"errors"
	"net/http"
	"log/slog"
	"strings"

	"github.com/hashicorp/consul/api"

	"github.com/ardnew/j2env/backend"
	"github.com/ardnew/j2env/pkg"
)

// DefaultURL is the agent address used when no URL is configured.
const DefaultURL = "http://127.0.0.1:8500"

// Options configures a [Client]. Zero fields take their defaults.
type Options struct {
	URL    string
	Scheme string
	Host   string
	Token  string
	Port   int
}

// Client reads keys from the Consul K/V store.
type Client struct {
	kv       *api.KV
	endpoint backend.Endpoint
}

// New returns a Client for the agent described by o.
func New(o Options) (*Client, error) {
	ep, err := backend.ResolveEndpoint(o.URL, DefaultURL, o.Scheme, o.Host, o.Port)
	if err != nil {
		return nil, pkg.ErrConnect.Wrap(err).With(slog.String("url", o.URL))
	}

	client, err := api.NewClient(&api.Config{
		Address: ep.Address(),
		Scheme:  ep.Scheme,
		Token:   o.Token,
	})
	if err != nil {
		return nil, pkg.ErrConnect.Wrap(err).With(slog.String("url", ep.String()))
	}

	return &Client{kv: client.KV(), endpoint: ep}, nil
}

// Endpoint returns the resolved agent endpoint.
func (c *Client) Endpoint() backend.Endpoint { return c.endpoint }

// Get reads every entry under key and returns the value at key: a string for
// a leaf, or a nested map built by splitting entry keys on '/'.
func (c *Client) Get(ctx context.Context, key string) (any, error) {
	key = strings.TrimRight(key, "/")

	pairs, _, err := c.kv.List(key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		if forbidden(err) {
			return nil, pkg.ErrAccessDenied.
				Wrapf("connecting to: %s", c.endpoint).
				With(slog.String("key", key))
		}

		return nil, pkg.ErrConnect.Wrap(err).With(slog.String("url", c.endpoint.String()))
	}

	if len(pairs) == 0 {
		return nil, pkg.ErrKeyNotFound.With(slog.String("key", key))
	}

	root := make(map[string]any)

	for _, pair := range pairs {
		insert(root, pair.Key, string(pair.Value))
	}

	var node any = root

	for _, part := range strings.Split(key, "/") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, pkg.ErrKeyNotFound.With(slog.String("key", key))
		}

		node, ok = m[part]
		if !ok {
			return nil, pkg.ErrKeyNotFound.With(slog.String("key", key))
		}
	}

	return node, nil
}

// insert stores value in root at the '/'-separated path key. Empty path
// elements (folder markers such as "app/") create maps without a leaf.
func insert(root map[string]any, key, value string) {
	parts := strings.Split(key, "/")
	node := root

	for i, part := range parts {
		last := i == len(parts)-1

		if last {
			if part != "" {
				node[part] = value
			}

			return
		}

		if part == "" {
			continue
		}

		child, ok := node[part].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[part] = child
		}

		node = child
	}
}

func forbidden(err error) bool {
	var se api.StatusError

	return errors.As(err, &se) && se.Code == http.StatusForbidden
}
