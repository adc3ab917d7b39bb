// Package client implements the single-host monitoring client a browser
// session hands off to. Login goes over the regular RPC protocol and falls
// back to an SNMP reachability probe when the agent's RPC transport is
// unreachable; a fallback session is reported as such so the browser can
// mark the host SNMP.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/tonhe/spyglass/internal/agentrpc"
	"github.com/tonhe/spyglass/internal/engine"
	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/logger"
	"github.com/tonhe/spyglass/internal/session"
)

// Viewer is the part of the presentation layer a running session draws to.
type Viewer interface {
	// RenderSession draws the per-host detail frame.
	RenderSession(host fleet.HostView)
	// SessionEnded reports whether the user asked to return to the browser.
	SessionEnded() bool
}

// Config tunes a Client.
type Config struct {
	Columns  []fleet.ColumnSpec
	Interval time.Duration
	// SNMPCommunity enables the SNMP fallback probe; empty disables it.
	SNMPCommunity string
	Log           logger.Logger
}

// Client is one session-bound monitoring client.
type Client struct {
	host     *fleet.HostRecord
	viewer   Viewer
	cfg      Config
	rpc      *agentrpc.Client
	poller   *engine.Poller
	fallback bool
}

// New builds a client bound to the host's current address and credentials.
func New(host *fleet.HostRecord, viewer Viewer, cfg Config) *Client {
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Log == nil {
		cfg.Log = logger.Noop()
	}
	return &Client{
		host:   host,
		viewer: viewer,
		cfg:    cfg,
		poller: engine.NewPoller(cfg.Columns, false, cfg.Log),
	}
}

// Login checks the agent is reachable and the credentials are accepted. A
// protocol-level rejection fails the login outright; a transport failure
// falls back to SNMP when a community is configured.
func (c *Client) Login() bool {
	ip, port := c.host.Addr()
	uri := agentrpc.BuildURI(c.host.Username(), c.host.Password(), ip, port)
	rpc, err := agentrpc.NewClient(uri, agentrpc.DefaultTimeout)
	if err != nil {
		c.cfg.Log.Warn("cannot create client for %s: %v", c.host.Key, err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), agentrpc.DefaultTimeout)
	defer cancel()
	_, err = rpc.Version(ctx)
	if err == nil {
		c.rpc = rpc
		return true
	}
	var fault *agentrpc.Fault
	if errors.As(err, &fault) {
		c.cfg.Log.Debug("login rejected by %s (%d %s)", c.host.Key, fault.Code, fault.Message)
		return false
	}
	c.cfg.Log.Debug("agent %s unreachable over RPC (%v)", c.host.Key, err)

	if c.cfg.SNMPCommunity == "" {
		return false
	}
	if c.snmpReachable(ip) {
		c.cfg.Log.Info("falling back to SNMP for %s", c.host.Key)
		c.fallback = true
		return true
	}
	return false
}

// RunSession serves the monitoring view until the user returns to the
// browser. It blocks the caller, which is the point: only one interactive
// session runs at a time.
func (c *Client) RunSession() session.Outcome {
	ctx := context.Background()
	for !c.viewer.SessionEnded() {
		if c.fallback {
			c.pollSNMP()
		} else {
			c.poller.Poll(ctx, c.host)
		}
		c.viewer.RenderSession(c.host.Snapshot())

		deadline := time.Now().Add(c.cfg.Interval)
		for time.Now().Before(deadline) {
			if c.viewer.SessionEnded() {
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
	}
	if c.fallback {
		return session.OutcomeSNMPFallback
	}
	return session.OutcomeNormal
}
