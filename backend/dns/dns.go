// Package dns resolves host names and service records for the dns: tag.
package dns

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/ardnew/j2env/pkg"
)

const (
	// DefaultType is the record type queried when none is configured.
	DefaultType = "A"
	// DefaultPort is the nameserver port used when none is configured.
	DefaultPort = 53
	// DefaultTimeout bounds a single exchange with one nameserver.
	DefaultTimeout = 5 * time.Second
)

// resolvConf is read for nameservers when none are configured.
var resolvConf = "/etc/resolv.conf"

// Types lists the supported record types.
var Types = []string{"A", "AAAA", "MX", "SRV"}

// Options configures a [Resolver]. Zero fields take their defaults.
type Options struct {
	Nameservers []string
	Type        string
	Port        int
	Timeout     time.Duration
}

// Resolver queries a fixed list of nameservers in order.
type Resolver struct {
	client      *dns.Client
	nameservers []string
	qtype       uint16
	typ         string
	port        int
}

// New returns a Resolver for o. Without explicit nameservers, the system
// resolver configuration is used.
func New(o Options) (*Resolver, error) {
	if o.Type == "" {
		o.Type = DefaultType
	}

	o.Type = strings.ToUpper(o.Type)

	qtype, ok := dns.StringToType[o.Type]
	if !ok || !slices.Contains(Types, o.Type) {
		return nil, pkg.ErrDNSQuery.Wrapf("unsupported record type %q", o.Type)
	}

	if o.Port == 0 {
		o.Port = DefaultPort
	}

	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	if len(o.Nameservers) == 0 {
		cc, err := dns.ClientConfigFromFile(resolvConf)
		if err != nil {
			return nil, pkg.ErrDNSQuery.Wrap(err).With(slog.String("path", resolvConf))
		}

		o.Nameservers = cc.Servers
	}

	return &Resolver{
		client:      &dns.Client{Timeout: o.Timeout},
		nameservers: o.Nameservers,
		qtype:       qtype,
		typ:         o.Type,
		port:        o.Port,
	}, nil
}

// Lookup queries name and returns one map per answer record of the
// configured type:
//
//	A, AAAA: {address}
//	SRV:     {target, port, weight, priority}
//	MX:      {exchange, preference}
//
// Nameservers are tried in order until one answers.
func (r *Resolver) Lookup(ctx context.Context, name string) ([]any, error) {
	fqdn := dns.Fqdn(name)

	m := new(dns.Msg)
	m.SetQuestion(fqdn, r.qtype)
	m.RecursionDesired = true

	var last error

	for _, ns := range r.nameservers {
		addr := net.JoinHostPort(ns, strconv.Itoa(r.port))

		in, _, err := r.client.ExchangeContext(ctx, m, addr)
		if err != nil {
			last = exchangeError(err)

			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return nil, pkg.ErrDNSQuery.Wrapf(
				"The DNS query name does not exist: %s", fqdn)
		default:
			return nil, pkg.ErrDNSQuery.Wrapf(
				"dns lookup failed with: %s", dns.RcodeToString[in.Rcode])
		}

		records := r.records(in.Answer)
		if len(records) == 0 {
			return nil, pkg.ErrDNSQuery.Wrapf(
				"The DNS response does not contain an answer to the question: %s IN %s",
				fqdn, r.typ)
		}

		return records, nil
	}

	if last == nil {
		last = pkg.ErrDNSQuery.Wrapf("dns lookup failed with: no nameservers")
	}

	return nil, last
}

func (r *Resolver) records(answer []dns.RR) []any {
	out := make([]any, 0, len(answer))

	for _, rr := range answer {
		if rr.Header().Rrtype != r.qtype {
			continue
		}

		switch rec := rr.(type) {
		case *dns.A:
			out = append(out, map[string]any{"address": rec.A.String()})
		case *dns.AAAA:
			out = append(out, map[string]any{"address": rec.AAAA.String()})
		case *dns.SRV:
			out = append(out, map[string]any{
				"target":   rec.Target,
				"port":     int64(rec.Port),
				"weight":   int64(rec.Weight),
				"priority": int64(rec.Priority),
			})
		case *dns.MX:
			out = append(out, map[string]any{
				"exchange":   rec.Mx,
				"preference": int64(rec.Preference),
			})
		}
	}

	return out
}

func exchangeError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return pkg.ErrDNSTimeout
	}

	return pkg.ErrDNSQuery.Wrapf("dns lookup failed with: %s", err)
}
