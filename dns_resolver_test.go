package r53update_test

import (
	"context"
	"errors"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuntunkun/r53update"
)

func TestDNSResolver(t *testing.T) {
	echo := startServer(t, zone{"myip.opendns.com.": {"203.0.113.9"}}, 0)
	recursive := startServer(t, zone{"resolver1.opendns.com.": {"127.0.0.1"}}, 0)

	r := &r53update.DNSResolver{
		QueryHost:     "myip.opendns.com",
		BootstrapHost: "resolver1.opendns.com",
		Nameservers:   []string{recursive.Addr},
		Port:          echo.Port(),
	}
	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addrs("203.0.113.9"), got)

	assert.Equal(t, []string{"resolver1.opendns.com."}, recursive.Queries(), "the recursive resolver must only see the bootstrap query")
	assert.Equal(t, []string{"myip.opendns.com."}, echo.Queries())
}

func TestDNSResolverBootstrapFailure(t *testing.T) {
	recursive := startServer(t, nil, dns.RcodeServerFailure)
	r := &r53update.DNSResolver{
		QueryHost:     "myip.opendns.com",
		BootstrapHost: "resolver1.opendns.com",
		Nameservers:   []string{recursive.Addr},
	}
	_, err := r.Resolve(context.Background())
	var re *r53update.ResolutionError
	require.True(t, errors.As(err, &re), "expected *ResolutionError; got %v", err)
}

func TestDNSResolverBootstrapMissing(t *testing.T) {
	recursive := startServer(t, zone{}, 0)
	r := &r53update.DNSResolver{
		QueryHost:     "myip.opendns.com",
		BootstrapHost: "resolver1.opendns.com",
		Nameservers:   []string{recursive.Addr},
	}
	_, err := r.Resolve(context.Background())
	var re *r53update.ResolutionError
	require.True(t, errors.As(err, &re), "expected *ResolutionError; got %v", err)
}

func TestDNSResolverEchoFailure(t *testing.T) {
	echo := startServer(t, zone{}, 0)
	recursive := startServer(t, zone{"resolver1.opendns.com.": {"127.0.0.1"}}, 0)
	r := &r53update.DNSResolver{
		QueryHost:     "myip.opendns.com",
		BootstrapHost: "resolver1.opendns.com",
		Nameservers:   []string{recursive.Addr},
		Port:          echo.Port(),
	}
	_, err := r.Resolve(context.Background())
	var re *r53update.ResolutionError
	require.True(t, errors.As(err, &re), "expected *ResolutionError; got %v", err)
}
