package r53update

import (
	"context"
	"net/netip"
)

// Resolver detects the global IPv4 address(es) of this host.
type Resolver interface {
	Resolve(context.Context) ([]netip.Addr, error)
}

// RecordReader returns the A records currently published for fqdn.
// A name that does not exist yields an empty slice and a nil error.
type RecordReader interface {
	Read(ctx context.Context, fqdn string) ([]netip.Addr, error)
}

// ZoneUpdater replaces the record set described by an UpdateRequest.
type ZoneUpdater interface {
	Upsert(ctx context.Context, req UpdateRequest) (UpdateResult, error)
}

// UpdateRequest describes the complete new value of one record set.
type UpdateRequest struct {
	ZoneName   string // trailing-dot qualified, e.g. "example.com."
	RecordName string // trailing-dot qualified, e.g. "www.example.com."
	RecordType string
	TTL        int64
	Values     []netip.Addr
	Comment    string
}

// UpdateResult carries the provider's change identifier.
type UpdateResult struct {
	ChangeID string
}

// ResolverFunc is an adapter to allow the use of ordinary functions as a Resolver.
type ResolverFunc func(context.Context) ([]netip.Addr, error)

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx context.Context) ([]netip.Addr, error) {
	return f(ctx)
}
