package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tonhe/spyglass/internal/engine"
	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/logger"
)

// Router runs the top-level control loop. Each tick it schedules polling
// workers and either renders the browse view or, when a host is selected,
// resolves credentials and hands off to the full client until that session
// ends. The loop blocks for the duration of a session; only one
// interactive session is meaningful at a time.
type Router struct {
	dir       *fleet.Directory
	sup       *engine.Supervisor
	creds     *Resolver
	pres      Presenter
	newClient ClientFactory
	static    *fleet.StaticList
	log       logger.Logger
	tick      time.Duration
	logPath   string
}

// RouterConfig wires a Router. Static may be nil when manual edits need no
// persistence; LogPath is shown in failure notices.
type RouterConfig struct {
	Directory *fleet.Directory
	Superv    *engine.Supervisor
	Resolver  *Resolver
	Presenter Presenter
	NewClient ClientFactory
	Static    *fleet.StaticList
	Log       logger.Logger
	Tick      time.Duration
	LogPath   string
}

func NewRouter(cfg RouterConfig) *Router {
	tick := cfg.Tick
	if tick == 0 {
		tick = time.Second
	}
	return &Router{
		dir:       cfg.Directory,
		sup:       cfg.Superv,
		creds:     cfg.Resolver,
		pres:      cfg.Presenter,
		newClient: cfg.NewClient,
		static:    cfg.Static,
		log:       cfg.Log,
		tick:      tick,
		logPath:   cfg.LogPath,
	}
}

// Run loops until the presenter reports a quit request or ctx is
// cancelled, then joins all polling workers.
func (r *Router) Run(ctx context.Context) {
	for !r.pres.EndRequested() && ctx.Err() == nil {
		hosts := r.dir.List()
		r.sup.Tick(ctx, hosts)

		if index, ok := r.pres.SelectedIndex(); ok {
			r.connect(index)
		} else {
			r.pres.Render(snapshots(hosts))
		}

		select {
		case <-ctx.Done():
		case <-time.After(r.tick):
		}
	}
	r.sup.Shutdown()
}

// connect drives Connecting(i) -> Connected(i) -> Browsing for the host at
// index. The index is re-resolved against the current list on entry and
// again on teardown; a vanished selection returns to browsing.
func (r *Router) connect(index int) {
	hosts := r.dir.List()
	if index < 0 || index >= len(hosts) {
		r.log.Debug("selected host vanished (index %d, list length %d)", index, len(hosts))
		r.pres.ClearSelection()
		return
	}
	host := hosts[index]
	_, port := host.Addr()
	r.pres.ShowMessage(fmt.Sprintf("Connecting to %s:%d", host.Name(), port), time.Second)

	if hashed, ok := r.creds.Resolve(host); ok && hashed != host.Password() {
		r.setHostField(index, host, "password", hashed)
	}

	client := r.newClient(host)
	if !client.Login() {
		r.pres.ShowMessage(
			fmt.Sprintf("Sorry, cannot connect to '%s'\nSee %s for more details", host.Name(), r.logPath),
			3*time.Second,
		)
		host.SetStatus(fleet.StatusOffline)
		r.pres.ClearSelection()
		return
	}

	r.log.Info("session opened to %s", host.Key)
	outcome := client.RunSession()
	r.log.Debug("session to %s ended", host.Key)

	// The list may have shrunk while the session ran.
	if current := r.dir.List(); index < len(current) {
		if outcome == OutcomeSNMPFallback {
			current[index].SetStatus(fleet.StatusSNMP)
		} else {
			current[index].SetStatus(fleet.StatusOnline)
		}
	} else {
		r.log.Debug("host list shrank during session, selection dropped")
	}
	r.pres.ClearSelection()
}

// setHostField routes a manual edit to the static list for persistence
// when the index falls in the static range, and to the record otherwise.
func (r *Router) setHostField(index int, host *fleet.HostRecord, field, value string) {
	if r.static != nil && index < r.dir.StaticCount() {
		if err := r.static.SetField(index, field, value); err != nil {
			r.log.Warn("cannot persist %s for %s: %v", field, host.Key, err)
			host.SetField(field, value)
		}
		return
	}
	host.SetField(field, value)
}

func snapshots(hosts []*fleet.HostRecord) []fleet.HostView {
	views := make([]fleet.HostView, len(hosts))
	for i, h := range hosts {
		views[i] = h.Snapshot()
	}
	return views
}
