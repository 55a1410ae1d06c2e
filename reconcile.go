package r53update

import (
	"net/netip"
	"slices"
	"strings"

	"github.com/miekg/dns"
)

// NeedsUpdate reports whether the published records must be replaced by the resolved ones.
//
// The comparison is order-sensitive: a record set whose values merely changed order
// is a different record set and is rewritten.
func NeedsUpdate(resolved, current []netip.Addr, force bool) bool {
	return force || !slices.Equal(resolved, current)
}

// Fqdn joins host and zone into a trailing-dot qualified name.
// An empty host or "@" names the zone apex.
func Fqdn(host, zone string) string {
	zone = normalizeZone(zone)
	if host == "" || host == "@" {
		return zone
	}
	return strings.TrimSuffix(host, ".") + "." + zone
}

func normalizeZone(zone string) string {
	return dns.Fqdn(strings.TrimSpace(zone))
}
