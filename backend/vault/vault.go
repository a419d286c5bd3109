// Package vault reads secrets from a HashiCorp Vault server.
package vault

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	"github.com/ardnew/j2env/backend"
	"github.com/ardnew/j2env/pkg"
	"github.com/ardnew/j2env/tree"
)

// DefaultURL is the server address used when no URL is configured.
const DefaultURL = "https://127.0.0.1:8200"

// Backend selects how a secret path is read and what part of the response is
// returned.
type Backend string

const (
	// Raw returns the full response envelope.
	Raw Backend = "raw"
	// KV1 returns the "data" member of a K/V version 1 secret.
	KV1 Backend = "kv1"
	// KV2 reads "<mount>/data/<path>" and returns the nested "data.data".
	KV2 Backend = "kv2"
)

// statusText maps HTTP status codes to the messages reported for them.
var statusText = map[int]string{
	http.StatusBadRequest:          "Invalid request",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Path not found",
	http.StatusInternalServerError: "Internal server error",
	http.StatusServiceUnavailable:  "Sealed",
}

// Options configures a [Client]. Zero fields take their defaults.
type Options struct {
	URL     string
	Scheme  string
	Host    string
	Token   string
	Backend Backend
	Port    int
}

// Client reads secrets through the Vault logical API.
type Client struct {
	logical  *api.Logical
	backend  Backend
	endpoint backend.Endpoint
}

// New returns a Client for the server described by o.
func New(o Options) (*Client, error) {
	switch o.Backend {
	case "":
		o.Backend = Raw
	case Raw, KV1, KV2:
	default:
		return nil, pkg.ErrUnknownBackend.With(slog.String("backend", string(o.Backend)))
	}

	ep, err := backend.ResolveEndpoint(o.URL, DefaultURL, o.Scheme, o.Host, o.Port)
	if err != nil {
		return nil, pkg.ErrConnect.Wrap(err).With(slog.String("url", o.URL))
	}

	cfg := api.DefaultConfig()
	cfg.Address = ep.String()
	cfg.MaxRetries = 0

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, pkg.ErrConnect.Wrap(err).With(slog.String("url", ep.String()))
	}

	if o.Token != "" {
		client.SetToken(o.Token)
	} else {
		client.ClearToken()
	}

	return &Client{logical: client.Logical(), backend: o.Backend, endpoint: ep}, nil
}

// Endpoint returns the resolved server endpoint.
func (c *Client) Endpoint() backend.Endpoint { return c.endpoint }

// Read fetches the secret at path according to the configured backend.
func (c *Client) Read(ctx context.Context, path string) (any, error) {
	path = strings.Trim(path, "/")

	if c.backend == KV2 {
		mount, rest, _ := strings.Cut(path, "/")
		path = mount + "/data/" + rest
	}

	secret, err := c.logical.ReadWithContext(ctx, path)
	if err != nil {
		var re *api.ResponseError
		if errors.As(err, &re) {
			return nil, statusError(re.StatusCode, path)
		}

		return nil, pkg.ErrConnect.
			Wrapf("%s/v1/%s", c.endpoint, path).
			With(slog.String("cause", err.Error()))
	}

	if secret == nil {
		return nil, statusError(http.StatusNotFound, path)
	}

	switch c.backend {
	case KV1:
		return normalize(secret.Data)

	case KV2:
		data, ok := secret.Data["data"]
		if !ok {
			return nil, statusError(http.StatusNotFound, path)
		}

		return normalize(data)

	default:
		return normalize(secret)
	}
}

func statusError(code int, path string) error {
	err := pkg.ErrBackendStatus.With(
		slog.Int("status", code),
		slog.String("path", path),
	)

	if text, ok := statusText[code]; ok {
		return err.Wrap(errors.New(text))
	}

	return err.Wrap(errors.New(strconv.Itoa(code)))
}

// normalize converts v to plain maps, slices, and scalars with integral
// numbers as int64.
func normalize(v any) (any, error) {
	out, err := tree.Roundtrip(v)
	if err != nil {
		return nil, pkg.ErrInvalidJSON.Wrap(err)
	}

	return out, nil
}
