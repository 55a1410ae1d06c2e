package r53update

import (
	"net/http"
	"sort"
)

// DefaultMethod is the detection method used when none is configured.
const DefaultMethod = "opendns.com"

// MethodLocalhost selects the address bound to a local interface.
const MethodLocalhost = "localhost"

// MethodOptions carries the settings a detection method may need.
type MethodOptions struct {
	Iface       string       // interface for MethodLocalhost
	Nameservers []string     // recursive nameservers for DNS based methods
	HTTPClient  *http.Client // client for HTTP based methods; IPv4-only default if nil
}

type methodFactory func(MethodOptions) (Resolver, error)

func webMethod(u string) methodFactory {
	return func(o MethodOptions) (Resolver, error) {
		r, err := WebResolver(u)
		if err != nil {
			return nil, err
		}
		if o.HTTPClient != nil {
			r.(*webResolver).SetHTTPClient(o.HTTPClient)
		}
		return r, nil
	}
}

var methods = map[string]methodFactory{
	"ifconfig.me":   webMethod("http://ifconfig.me/ip"),
	"ipecho.net":    webMethod("http://ipecho.net/plain"),
	"icanhazip.com": webMethod("http://icanhazip.com"),
	"opendns.com": func(o MethodOptions) (Resolver, error) {
		return &DNSResolver{
			QueryHost:     "myip.opendns.com",
			BootstrapHost: "resolver1.opendns.com",
			Nameservers:   o.Nameservers,
		}, nil
	},
	MethodLocalhost: func(o MethodOptions) (Resolver, error) {
		if o.Iface == "" {
			return nil, configErrorf("you must specify network interface with '--iface' option")
		}
		return InterfaceResolver(o.Iface), nil
	},
}

// Methods returns the names of all registered detection methods, sorted.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewResolver builds the Resolver for the named detection method.
func NewResolver(method string, opts MethodOptions) (Resolver, error) {
	f, ok := methods[method]
	if !ok {
		return nil, configErrorf("unknown detection method '%s' (choose from %v)", method, Methods())
	}
	return f(opts)
}
