package r53update_test

import (
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// zone maps a query name to the A records it answers with.
// Names that are missing answer NXDOMAIN.
type zone map[string][]string

// testServer is an in-process DNS server on the loopback interface.
type testServer struct {
	Addr string

	mu      sync.Mutex
	queries []string
}

func (s *testServer) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *testServer) Port() string {
	_, port, _ := net.SplitHostPort(s.Addr)
	return port
}

// startServer answers from z; rcode, when non-zero, is returned for every query instead.
func startServer(t *testing.T, z zone, rcode int) *testServer {
	t.Helper()
	ts := &testServer{}
	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		q := r.Question[0]
		ts.mu.Lock()
		ts.queries = append(ts.queries, q.Name)
		ts.mu.Unlock()

		m := new(dns.Msg)
		m.SetReply(r)
		switch answers, ok := z[q.Name]; {
		case rcode != 0:
			m.Rcode = rcode
		case !ok:
			m.Rcode = dns.RcodeNameError
		default:
			for _, a := range answers {
				rr, err := dns.NewRR(fmt.Sprintf("%s 60 IN A %s", q.Name, a))
				if err != nil {
					t.Errorf("bad test record %q: %s", a, err)
					continue
				}
				m.Answer = append(m.Answer, rr)
			}
		}
		w.WriteMsg(m)
	})

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go srv.ActivateAndServe()
	<-started
	t.Cleanup(func() { srv.Shutdown() })

	ts.Addr = pc.LocalAddr().String()
	return ts
}

// silentServer accepts packets and never answers.
func silentServer(t *testing.T) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })
	return pc.LocalAddr().String()
}

// truncatingServer answers UDP queries with an empty truncated reply and
// serves the full answer for name over TCP on the same port.
func truncatingServer(t *testing.T, name string, answers ...string) (addr string, tcpQueries func() int) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen int
	)
	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		if _, udp := w.RemoteAddr().(*net.UDPAddr); udp {
			m.Truncated = true
			w.WriteMsg(m)
			return
		}
		mu.Lock()
		seen++
		mu.Unlock()
		for _, a := range answers {
			rr, _ := dns.NewRR(fmt.Sprintf("%s 60 IN A %s", name, a))
			m.Answer = append(m.Answer, rr)
		}
		w.WriteMsg(m)
	})

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	pc, err := net.ListenPacket("udp", l.Addr().String())
	if err != nil {
		l.Close()
		t.Skipf("udp port %s is taken: %s", l.Addr(), err)
	}
	for _, srv := range []*dns.Server{{Listener: l, Handler: handler}, {PacketConn: pc, Handler: handler}} {
		started := make(chan struct{})
		srv.NotifyStartedFunc = func() { close(started) }
		go srv.ActivateAndServe()
		<-started
		t.Cleanup(func() { srv.Shutdown() })
	}
	return l.Addr().String(), func() int {
		mu.Lock()
		defer mu.Unlock()
		return seen
	}
}
