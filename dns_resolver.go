package r53update

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/miekg/dns"
)

// DNSResolver detects the public address by asking an authoritative "echo" nameserver,
// which answers QueryHost with the address the query came from.
//
// The echo server's own address is found first by resolving BootstrapHost through Nameservers.
// The second query is then sent to that address directly, so no local or recursive resolver
// can answer it from a cache.
type DNSResolver struct {
	QueryHost     string   // e.g. "myip.opendns.com"
	BootstrapHost string   // e.g. "resolver1.opendns.com"
	Nameservers   []string // recursive nameservers for the bootstrap step; DefaultNameservers if empty
	Port          string   // port of the echo server; "53" if empty
	Client        *dns.Client
}

// Resolve implements Resolver.
func (r *DNSResolver) Resolve(ctx context.Context) ([]netip.Addr, error) {
	addrs, err := r.resolve(ctx)
	if err != nil {
		return nil, &ResolutionError{Method: "dns " + r.QueryHost, Err: err}
	}
	return addrs, nil
}

func (r *DNSResolver) resolve(ctx context.Context) ([]netip.Addr, error) {
	reader := &NameserverReader{Nameservers: r.Nameservers, Client: r.Client}
	echoServers, err := reader.Read(ctx, r.BootstrapHost)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", r.BootstrapHost, err)
	}
	if len(echoServers) == 0 {
		return nil, fmt.Errorf("%s has no A record", r.BootstrapHost)
	}

	port := r.Port
	if port == "" {
		port = "53"
	}

	var errs []error
	for _, echo := range echoServers {
		server := net.JoinHostPort(echo.String(), port)
		addrs, err := queryA(ctx, r.Client, r.QueryHost, server)
		if err != nil {
			errs = append(errs, fmt.Errorf("error querying %s for %s: %w", server, r.QueryHost, err))
			continue
		}
		if len(addrs) == 0 {
			errs = append(errs, fmt.Errorf("%s returned no address for %s", server, r.QueryHost))
			continue
		}
		return addrs, nil
	}
	return nil, errors.Join(errs...)
}
