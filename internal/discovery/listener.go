// Package discovery watches the local network for agents announcing
// themselves over mDNS and serves them as a fleet source. The browser core
// only depends on the fleet.Source interface; this is the one transport
// implementation shipped with it.
package discovery

import (
	"context"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/tonhe/spyglass/internal/config"
	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/logger"
)

// ServiceType is the mDNS service agents announce under.
const ServiceType = "_spyglass._tcp"

// Listener collects announced agents. Insertion order is kept stable so
// the directory's positional indexing stays valid across refreshes.
type Listener struct {
	mu      sync.Mutex
	order   []string
	records map[string]*fleet.HostRecord
	log     logger.Logger
}

// NewListener creates an empty Listener.
func NewListener(log logger.Logger) *Listener {
	return &Listener{
		records: make(map[string]*fleet.HostRecord),
		log:     log,
	}
}

// Start browses for agents until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return err
	}
	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			l.handle(entry)
		}
	}()
	return resolver.Browse(ctx, ServiceType, "local.", entries)
}

// handle registers an announced agent, or retires it on a goodbye packet
// (TTL 0).
func (l *Listener) handle(entry *zeroconf.ServiceEntry) {
	if len(entry.AddrIPv4) == 0 {
		return
	}
	ip := entry.AddrIPv4[0].String()
	key := fleet.HostKey(entry.Instance, ip, entry.Port)

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.TTL == 0 {
		if _, ok := l.records[key]; ok {
			delete(l.records, key)
			for i, k := range l.order {
				if k == key {
					l.order = append(l.order[:i], l.order[i+1:]...)
					break
				}
			}
			l.log.Info("agent %s left the network", key)
		}
		return
	}
	if _, ok := l.records[key]; ok {
		return
	}
	l.records[key] = fleet.NewHostRecord(entry.Instance, ip, entry.Port, config.DefaultUsername)
	l.order = append(l.order, key)
	l.log.Info("discovered agent %s", key)
}

// List returns the discovered agents in discovery order.
func (l *Listener) List() []*fleet.HostRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*fleet.HostRecord, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.records[key])
	}
	return out
}
