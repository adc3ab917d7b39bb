// Package session owns the interactive control loop: browsing the host
// list, resolving credentials for a selected host, and handing off to the
// full monitoring client until the session ends.
package session

import (
	"time"

	"github.com/tonhe/spyglass/internal/fleet"
)

// Outcome reports how a full-client session was served.
type Outcome int

const (
	// OutcomeNormal means the session ran over the regular RPC protocol.
	OutcomeNormal Outcome = iota
	// OutcomeSNMPFallback means the agent was only reachable over SNMP.
	OutcomeSNMPFallback
)

// Presenter is the terminal layer the router drives. Implementations must
// be safe to call from the router goroutine while the terminal event loop
// runs elsewhere.
type Presenter interface {
	// Render draws the browse view from host snapshots.
	Render(hosts []fleet.HostView)
	// ShowMessage displays a transient notice. hint suggests how long.
	ShowMessage(text string, hint time.Duration)
	// PromptInput asks the user for a line of input, masked if mask is
	// set. The second return is false when the user declined.
	PromptInput(label string, mask bool) (string, bool)
	// SelectedIndex returns the host the user selected, if any.
	SelectedIndex() (int, bool)
	// ClearSelection returns the presenter to browse mode.
	ClearSelection()
	// EndRequested reports whether the user asked to quit.
	EndRequested() bool
}

// FullClient is the single-host monitoring client the router hands a
// session to.
type FullClient interface {
	Login() bool
	RunSession() Outcome
}

// ClientFactory builds a FullClient bound to the selected host's current
// address and credentials.
type ClientFactory func(host *fleet.HostRecord) FullClient
