package r53update

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// defaultHTTPClient only dials over IPv4 so that echo services report our IPv4 address
// even on dual-stack hosts.
var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp4", addr)
		},
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// WebResolver constructs a resolver which asks an external web service for our public IP address.
//
// The service must speak http and return a 2xx status,
// with a valid IPv4 address as the first line of the response body.
// All other responses are considered an error.
func WebResolver(serviceURL string) (Resolver, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	return &webResolver{serviceURL: u}, nil
}

type webResolver struct {
	httpClient *http.Client
	serviceURL *url.URL
}

// SetHTTPClient replaces the client used for lookups. A nil client restores the IPv4-only default.
func (wr *webResolver) SetHTTPClient(c *http.Client) {
	wr.httpClient = c
}

// Resolve implements Resolver.
func (wr *webResolver) Resolve(ctx context.Context) ([]netip.Addr, error) {
	ip, err := wr.lookup(ctx)
	if err != nil {
		return nil, &ResolutionError{Method: wr.serviceURL.String(), Err: err}
	}
	return []netip.Addr{ip}, nil
}

func (wr *webResolver) lookup(ctx context.Context) (netip.Addr, error) {
	// 15 seconds is an eternity for the size of the request we're making,
	// but this ensures that Resolve eventually completes even with context.Background.
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wr.serviceURL.String(), nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpclient := wr.httpClient
	if httpclient == nil {
		httpclient = defaultHTTPClient
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return netip.Addr{}, fmt.Errorf("http request returned %s", resp.Status)
	}

	scanner := bufio.NewReader(resp.Body)
	ipstring, _ := scanner.ReadString('\n')
	ip, err := netip.ParseAddr(strings.TrimSpace(ipstring))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error parsing IP address from response body: %w", err)
	}
	ip = ip.Unmap()
	if !ip.Is4() {
		return netip.Addr{}, fmt.Errorf("service returned %s, which is not an IPv4 address", ip)
	}
	return ip, nil
}
