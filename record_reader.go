package r53update

import (
	"context"
	"errors"
	"net/netip"

	"github.com/miekg/dns"
)

// DefaultNameservers are queried when a NameserverReader is given none.
var DefaultNameservers = []string{"8.8.8.8", "8.8.4.4"}

// NameserverReader reads A records through an explicit list of recursive nameservers.
// The system resolver configuration is never consulted.
type NameserverReader struct {
	// Nameservers are tried in order. Entries are "host" or "host:port".
	Nameservers []string
	Client      *dns.Client
}

// Read implements RecordReader.
//
// NXDOMAIN and NODATA answers both yield an empty slice.
// If no nameserver gives a usable answer the last failure is returned as a *LookupError.
func (r *NameserverReader) Read(ctx context.Context, fqdn string) ([]netip.Addr, error) {
	servers := r.Nameservers
	if len(servers) == 0 {
		servers = DefaultNameservers
	}

	var lastErr error
	for _, ns := range servers {
		addrs, err := queryA(ctx, r.Client, fqdn, withDefaultPort(ns))
		switch {
		case err == nil:
			return addrs, nil
		case errors.Is(err, errNameNotFound):
			return nil, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, &LookupError{Name: fqdn, Err: lastErr}
}
