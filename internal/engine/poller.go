// Package engine drives the per-host polling: one Poller probes an agent
// for the configured metric digest, one Supervisor keeps exactly one live
// polling worker per host key.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/tonhe/spyglass/internal/agentrpc"
	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/logger"
)

// Poller probes one host per call for the configured columns and updates
// the record's status, metrics, and decorations in place. All failures are
// contained here: they surface only as a status transition plus a debug
// trace, never as a panic or a returned error.
type Poller struct {
	columns     []fleet.ColumnSpec
	timeout     time.Duration
	strictSetup bool
	log         logger.Logger
}

// NewPoller creates a Poller for the given digest columns. strictSetup
// marks hosts OFFLINE when the RPC client cannot be constructed; otherwise
// such cycles leave the status untouched.
func NewPoller(columns []fleet.ColumnSpec, strictSetup bool, log logger.Logger) *Poller {
	return &Poller{
		columns:     columns,
		timeout:     agentrpc.DefaultTimeout,
		strictSetup: strictSetup,
		log:         log,
	}
}

// Poll runs one poll cycle against host.
func (p *Poller) Poll(ctx context.Context, host *fleet.HostRecord) {
	ip, port := host.Addr()
	uri := agentrpc.BuildURI(host.Username(), host.Password(), ip, port)
	client, err := agentrpc.NewClient(uri, p.timeout)
	if err != nil {
		p.log.Warn("cannot create client for %s: %v", host.Key, err)
		if p.strictSetup {
			host.SetStatus(fleet.StatusOffline)
		}
		return
	}

	for _, col := range p.columns {
		raw, err := client.PluginValues(ctx, col.Plugin)
		if err != nil {
			p.classify(host, err)
			return
		}
		value, ok := projectValue(raw, col)
		if !ok {
			p.log.Debug("column %s missing on %s, skipped", col.MetricKey(), host.Key)
			continue
		}

		view, err := client.PluginView(ctx, col.Plugin)
		if err != nil {
			p.classify(host, err)
			return
		}
		decoration, ok := projectDecoration(view, col)
		if !ok {
			p.log.Debug("decoration %s missing on %s", col.MetricKey(), host.Key)
		}
		host.SetMetric(col.MetricKey(), value, decoration)
	}
	host.SetStatus(fleet.StatusOnline)
}

// classify maps a call error to a status transition. A 401 fault clears
// the stored secret so the next session prompts again.
func (p *Poller) classify(host *fleet.HostRecord, err error) {
	var fault *agentrpc.Fault
	if errors.As(err, &fault) {
		if fault.Code == agentrpc.CodeAuthRejected {
			host.SetStatus(fleet.StatusProtected)
			host.ClearPassword()
		} else {
			host.SetStatus(fleet.StatusOffline)
		}
		p.log.Debug("cannot grab stats from %s (%d %s)", host.Key, fault.Code, fault.Message)
		return
	}
	host.SetStatus(fleet.StatusOffline)
	p.log.Debug("cannot reach %s (%v)", host.Key, err)
}

// projectValue extracts the column's value from a plugin payload. Payloads
// without a subkey are flat objects. Subkeyed payloads are lists of records
// where each record's "key" entry names its identifying field; the match
// against the subkey is case-insensitive.
func projectValue(raw json.RawMessage, col fleet.ColumnSpec) (any, bool) {
	if col.Subkey == "" {
		var obj map[string]any
		if json.Unmarshal(raw, &obj) != nil {
			return nil, false
		}
		v, ok := obj[col.Field]
		return v, ok
	}

	var list []map[string]any
	if json.Unmarshal(raw, &list) != nil {
		return nil, false
	}
	for _, rec := range list {
		keyField, _ := rec["key"].(string)
		if keyField == "" {
			continue
		}
		id, _ := rec[keyField].(string)
		if strings.EqualFold(id, col.Subkey) {
			v, ok := rec[col.Field]
			return v, ok
		}
	}
	return nil, false
}

// projectDecoration extracts the rendering hint for a column from a plugin
// view payload.
func projectDecoration(raw json.RawMessage, col fleet.ColumnSpec) (string, bool) {
	var view map[string]json.RawMessage
	if json.Unmarshal(raw, &view) != nil {
		return "", false
	}
	if col.Subkey != "" {
		sub, ok := view[col.Subkey]
		if !ok {
			return "", false
		}
		if json.Unmarshal(sub, &view) != nil {
			return "", false
		}
	}
	fieldRaw, ok := view[col.Field]
	if !ok {
		return "", false
	}
	var f struct {
		Decoration string `json:"decoration"`
	}
	if json.Unmarshal(fieldRaw, &f) != nil {
		return "", false
	}
	return f.Decoration, true
}
