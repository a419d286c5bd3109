package tag

import (
	"context"

	"github.com/ardnew/j2env/backend/consul"
	"github.com/ardnew/j2env/backend/dns"
	"github.com/ardnew/j2env/backend/vault"
)

// ParseConsul reads the key named by the payload from a Consul agent.
func ParseConsul(ctx context.Context, req Request) (any, error) {
	c, err := consul.New(consul.Options{
		URL:    req.Config.String("url"),
		Scheme: req.Config.String("scheme"),
		Host:   req.Config.String("host"),
		Port:   req.Config.Int("port"),
		Token:  req.Config.String("token"),
	})
	if err != nil {
		return nil, err
	}

	return c.Get(ctx, req.Value)
}

// ParseVault reads the secret at the path named by the payload.
func ParseVault(ctx context.Context, req Request) (any, error) {
	c, err := vault.New(vault.Options{
		URL:     req.Config.String("url"),
		Scheme:  req.Config.String("scheme"),
		Host:    req.Config.String("host"),
		Port:    req.Config.Int("port"),
		Token:   req.Config.String("token"),
		Backend: vault.Backend(req.Config.String("backend")),
	})
	if err != nil {
		return nil, err
	}

	return c.Read(ctx, req.Value)
}

// ParseDNS resolves the name given by the payload.
func ParseDNS(ctx context.Context, req Request) (any, error) {
	r, err := dns.New(dns.Options{
		Nameservers: req.Config.Strings("nameservers"),
		Port:        req.Config.Int("port"),
		Type:        req.Config.String("type"),
	})
	if err != nil {
		return nil, err
	}

	records, err := r.Lookup(ctx, req.Value)
	if err != nil {
		return nil, err
	}

	return records, nil
}
