package r53update

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// InterfaceResolver constructs a resolver that returns the IPv4 addresses bound to the named interface,
// in the order the system reports them.
func InterfaceResolver(iface string) Resolver {
	return interfaceResolver{iface: iface}
}

type interfaceResolver struct {
	iface string
}

var errNoInetAddress = errors.New("no inet address found")

func (r interfaceResolver) Resolve(ctx context.Context) ([]netip.Addr, error) {
	addrs, err := interfaceAddrs(r.iface)
	if err != nil {
		return nil, &ResolutionError{Method: r.iface, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &ResolutionError{Method: r.iface, Err: errNoInetAddress}
	}
	return addrs, nil
}

func interfaceAddrs(name string) (addrs []netip.Addr, err error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errNoInetAddress, err)
	}
	a, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("error looking up addresses for interface %s: %w", name, err)
	}
	// addr: ip+net:192.168.86.253/24
	// addr: ip+net:fe80::2cc9:801b:3551:9a43/64
	for _, addr := range a {
		ip, err := netip.ParsePrefix(addr.String())
		if err != nil {
			continue
		}
		if ip.Addr().Unmap().Is4() {
			addrs = append(addrs, ip.Addr().Unmap())
		}
	}
	return addrs, nil
}

// Interfaces lists the names of the network interfaces on this host.
func Interfaces() ([]string, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ifs))
	for _, i := range ifs {
		names = append(names, i.Name)
	}
	return names, nil
}
