package dnsbackend

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/pkg/errors"

	"github.com/mikempw/failover/core/siteconfig"
)

func init() {
	Register("rfc2136", func(cfg interface{}) (Backend, error) {
		c := cfg.(siteconfig.T)
		if c.DNSServer == "" {
			return nil, errors.New("dnsbackend/rfc2136: DNS_SERVER is required")
		}
		b := &RFC2136{
			server: net.JoinHostPort(c.DNSServer, "53"),
			zone:   dns.Fqdn(c.DNSZone),
			record: dns.Fqdn(c.DNSRecord),
		}
		if c.DNSTSIGKeyName != "" {
			algo := c.DNSTSIGAlgorithm
			if algo == "" {
				algo = dns.HmacSHA256
			}
			b.tsigKey = dns.Fqdn(c.DNSTSIGKeyName)
			b.tsigSecret = c.DNSTSIGSecret
			b.tsigAlgo = algo
		}
		return b, nil
	})
}

// RFC2136 performs dynamic DNS updates against an authoritative server,
// covering both the bind-tsig and ad-gss provider identifiers from the
// original scripts: they differ only in TSIG negotiation, not in wire
// protocol, per SPEC_FULL.md §4.3.1.
type RFC2136 struct {
	server     string
	zone       string
	record     string
	tsigKey    string
	tsigSecret string
	tsigAlgo   string
}

func (b *RFC2136) client() *dns.Client {
	c := &dns.Client{Timeout: 5 * time.Second}
	if b.tsigKey != "" {
		c.TsigSecret = map[string]string{b.tsigKey: b.tsigSecret}
	}
	return c
}

// SetRecords applies the A and TXT RRset changes as a single dns.Msg
// update transaction, satisfying the atomic-where-supported requirement
// in SPEC_FULL.md §4.3.
func (b *RFC2136) SetRecords(ctx context.Context, ip net.IP, txt string, ttl time.Duration) error {
	m := new(dns.Msg)
	m.SetUpdate(b.zone)

	ttlSecs := uint32(ttl.Seconds())

	aRR, err := dns.NewRR(fmt.Sprintf("%s %d IN A %s", dns.Fqdn(b.record), ttlSecs, ip.String()))
	if err != nil {
		return errors.Wrap(err, "dnsbackend/rfc2136: build A RR")
	}
	txtRR, err := dns.NewRR(fmt.Sprintf("%s %d IN TXT %s", dns.Fqdn(b.record), ttlSecs, strconv.Quote(txt)))
	if err != nil {
		return errors.Wrap(err, "dnsbackend/rfc2136: build TXT RR")
	}

	removeA, err := dns.NewRR(fmt.Sprintf("%s 0 IN A 0.0.0.0", dns.Fqdn(b.record)))
	if err != nil {
		return errors.Wrap(err, "dnsbackend/rfc2136: build A removal RR")
	}
	removeTXT, err := dns.NewRR(fmt.Sprintf("%s 0 IN TXT \"\"", dns.Fqdn(b.record)))
	if err != nil {
		return errors.Wrap(err, "dnsbackend/rfc2136: build TXT removal RR")
	}
	m.RemoveRRset([]dns.RR{removeA})
	m.RemoveRRset([]dns.RR{removeTXT})
	m.Insert([]dns.RR{aRR, txtRR})

	if b.tsigKey != "" {
		m.SetTsig(b.tsigKey, b.tsigAlgo, 300, time.Now().Unix())
	}

	c := b.client()
	_, _, err = c.ExchangeContext(ctx, m, b.server)
	if err != nil {
		return errors.Wrap(ErrNetwork, err.Error())
	}
	return nil
}

func (b *RFC2136) GetRecords(ctx context.Context) (Records, error) {
	c := b.client()
	var rec Records

	aMsg := new(dns.Msg)
	aMsg.SetQuestion(dns.Fqdn(b.record), dns.TypeA)
	in, _, err := c.ExchangeContext(ctx, aMsg, b.server)
	if err != nil {
		return Records{}, errors.Wrap(ErrNetwork, err.Error())
	}
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			rec.A = a.A
		}
	}

	txtMsg := new(dns.Msg)
	txtMsg.SetQuestion(dns.Fqdn(b.record), dns.TypeTXT)
	in, _, err = c.ExchangeContext(ctx, txtMsg, b.server)
	if err != nil {
		return Records{}, errors.Wrap(ErrNetwork, err.Error())
	}
	for _, rr := range in.Answer {
		if t, ok := rr.(*dns.TXT); ok {
			rec.TXT = strings.Join(t.Txt, "")
		}
	}
	return rec, nil
}
