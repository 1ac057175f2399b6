package resolver

import (
	"context"
	"net"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

// Direct queries a specific authoritative or recursive server over UDP,
// bypassing whatever the local stub resolver has cached, falling back to
// TCP if the UDP response is truncated. This is DNS_SERVER support from
// SPEC_FULL.md §4.4.
type Direct struct {
	Server string // host:port, defaults to port 53 if bare host given
}

func (d Direct) serverAddr() string {
	if _, _, err := net.SplitHostPort(d.Server); err == nil {
		return d.Server
	}
	return net.JoinHostPort(d.Server, "53")
}

func (d Direct) LookupA(ctx context.Context, fqdn string) (net.IP, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(fqdn), dns.TypeA)

	c := new(dns.Client)
	in, _, err := c.ExchangeContext(ctx, m, d.serverAddr())
	if err != nil {
		return nil, errors.Wrap(err, "resolver/direct: udp query")
	}
	if in.Truncated {
		c.Net = "tcp"
		in, _, err = c.ExchangeContext(ctx, m, d.serverAddr())
		if err != nil {
			return nil, errors.Wrap(err, "resolver/direct: tcp fallback query")
		}
	}

	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A, nil
		}
	}
	return nil, errors.Errorf("resolver/direct: no A record for %s", fqdn)
}
