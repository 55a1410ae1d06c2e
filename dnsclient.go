package r53update

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/miekg/dns"
)

// errNameNotFound marks an NXDOMAIN answer. It never leaves the package.
var errNameNotFound = errors.New("name does not exist")

// withDefaultPort returns server as host:port, assuming port 53 when none is given.
func withDefaultPort(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// queryA asks a single server for the A records of name.
// The records are returned in answer order; CNAMEs in the chain are skipped.
func queryA(ctx context.Context, c *dns.Client, name, server string) ([]netip.Addr, error) {
	if c == nil {
		c = new(dns.Client)
	}
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)

	r, _, err := c.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, err
	}
	if r.Truncated && c.Net != "tcp" {
		tc := &dns.Client{Net: "tcp", Timeout: c.Timeout, Dialer: c.Dialer}
		if r, _, err = tc.ExchangeContext(ctx, m, server); err != nil {
			return nil, err
		}
	}

	switch r.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, errNameNotFound
	default:
		return nil, fmt.Errorf("server %s answered %s", server, dns.RcodeToString[r.Rcode])
	}

	var addrs []netip.Addr
	for _, rr := range r.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		if ip, ok := netip.AddrFromSlice(a.A.To4()); ok {
			addrs = append(addrs, ip)
		}
	}
	return addrs, nil
}
