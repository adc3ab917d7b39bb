// Package fleet holds the host data model and the merged directory of
// statically configured and discovered agents.
package fleet

import (
	"fmt"
	"sync"
)

// Status is the coarse connectivity/auth classification of a host. It is
// the authoritative state machine input for the browser.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
	StatusProtected
	StatusSNMP
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "ONLINE"
	case StatusOffline:
		return "OFFLINE"
	case StatusProtected:
		return "PROTECTED"
	case StatusSNMP:
		return "SNMP"
	default:
		return "UNKNOWN"
	}
}

// ColumnSpec names one metric digest to poll: plugin + field, with an
// optional subkey selecting one record out of a list-valued plugin.
type ColumnSpec struct {
	Plugin string
	Field  string
	Subkey string
}

// MetricKey returns the composite key metrics are stored under.
func (c ColumnSpec) MetricKey() string {
	if c.Subkey != "" {
		return c.Plugin + "." + c.Field + "." + c.Subkey
	}
	return c.Plugin + "." + c.Field
}

// HostKey derives the stable identifier correlating a record with its
// polling worker.
func HostKey(name, ip string, port int) string {
	return fmt.Sprintf("%s:%s:%d", name, ip, port)
}

// HostRecord is one monitored target. Key is immutable; all other fields
// are guarded by one mutex because the owning poller, the session router,
// and the renderer touch them from different goroutines.
type HostRecord struct {
	Key string

	mu          sync.Mutex
	name        string
	ip          string
	port        int
	username    string
	password    string
	status      Status
	metrics     map[string]any
	decorations map[string]string
}

// NewHostRecord creates a record in StatusUnknown with no metrics.
func NewHostRecord(name, ip string, port int, username string) *HostRecord {
	return &HostRecord{
		Key:         HostKey(name, ip, port),
		name:        name,
		ip:          ip,
		port:        port,
		username:    username,
		metrics:     make(map[string]any),
		decorations: make(map[string]string),
	}
}

func (h *HostRecord) Name() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.name
}

func (h *HostRecord) Addr() (string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ip, h.port
}

func (h *HostRecord) Username() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.username
}

func (h *HostRecord) Password() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.password
}

// SetPassword stores a hashed secret on the record.
func (h *HostRecord) SetPassword(hashed string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.password = hashed
}

// ClearPassword unsets the secret so the next session prompts again.
func (h *HostRecord) ClearPassword() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.password = ""
}

func (h *HostRecord) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *HostRecord) SetStatus(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = s
}

// SetMetric records one polled value and its rendering hint.
func (h *HostRecord) SetMetric(key string, value any, decoration string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.metrics[key] = value
	if decoration == "" {
		delete(h.decorations, key)
		return
	}
	h.decorations[key] = decoration
}

// Metric returns the stored value for key. Metric values are only trusted
// while the status is StatusOnline.
func (h *HostRecord) Metric(key string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.metrics[key]
	return v, ok
}

// SetField applies a manual edit to an addressing or credential field.
// Unknown field names are ignored.
func (h *HostRecord) SetField(field, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch field {
	case "name":
		h.name = value
	case "ip":
		h.ip = value
	case "username":
		h.username = value
	case "password":
		h.password = value
	}
}

// HostView is a point-in-time copy of a record for rendering.
type HostView struct {
	Key         string
	Name        string
	IP          string
	Port        int
	Status      Status
	Metrics     map[string]any
	Decorations map[string]string
}

// Snapshot copies the record under its lock.
func (h *HostRecord) Snapshot() HostView {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := HostView{
		Key:         h.Key,
		Name:        h.name,
		IP:          h.ip,
		Port:        h.port,
		Status:      h.status,
		Metrics:     make(map[string]any, len(h.metrics)),
		Decorations: make(map[string]string, len(h.decorations)),
	}
	for k, m := range h.metrics {
		v.Metrics[k] = m
	}
	for k, d := range h.decorations {
		v.Decorations[k] = d
	}
	return v
}
