package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
	"github.com/tonhe/spyglass/internal/logger"
)

func entry(instance, ip string, port int, ttl uint32) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, "local.")
	e.Port = port
	e.TTL = ttl
	e.AddrIPv4 = []net.IP{net.ParseIP(ip)}
	return e
}

func TestListenerOrderStable(t *testing.T) {
	l := NewListener(logger.Noop())
	l.handle(entry("alpha", "10.0.0.1", 61209, 120))
	l.handle(entry("beta", "10.0.0.2", 61209, 120))
	l.handle(entry("alpha", "10.0.0.1", 61209, 120)) // re-announce

	hosts := l.List()
	if len(hosts) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(hosts))
	}
	if hosts[0].Name() != "alpha" || hosts[1].Name() != "beta" {
		t.Errorf("discovery order not stable: %q, %q", hosts[0].Name(), hosts[1].Name())
	}
}

func TestListenerGoodbyeRetires(t *testing.T) {
	l := NewListener(logger.Noop())
	l.handle(entry("alpha", "10.0.0.1", 61209, 120))
	l.handle(entry("beta", "10.0.0.2", 61209, 120))
	l.handle(entry("alpha", "10.0.0.1", 61209, 0)) // goodbye

	hosts := l.List()
	if len(hosts) != 1 {
		t.Fatalf("expected 1 host after goodbye, got %d", len(hosts))
	}
	if hosts[0].Name() != "beta" {
		t.Errorf("wrong host retired: %q", hosts[0].Name())
	}
}

func TestListenerIgnoresAddresslessEntries(t *testing.T) {
	l := NewListener(logger.Noop())
	e := zeroconf.NewServiceEntry("ghost", ServiceType, "local.")
	e.Port = 61209
	e.TTL = 120
	l.handle(e)

	if got := len(l.List()); got != 0 {
		t.Errorf("entry without an address must be ignored, got %d hosts", got)
	}
}
