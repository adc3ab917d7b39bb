package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tonhe/spyglass/internal/fleet"
)

// State is the control surface shared between the Bubble Tea update loop
// and the session router goroutine. The model writes selection and
// end-of-life flags here; the router reads them between ticks.
type State struct {
	mu         sync.Mutex
	selected   *int
	end        bool
	sessionEnd bool
}

func NewState() *State {
	return &State{}
}

func (s *State) setSelected(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := index
	s.selected = &i
	s.sessionEnd = false
}

func (s *State) requestEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end = true
}

func (s *State) endSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionEnd = true
}

// Presenter bridges the router and the active full client onto the TUI.
// Everything flows through program.Send, so the model mutates only inside
// its own update loop.
type Presenter struct {
	program *tea.Program
	state   *State
}

func NewPresenter(program *tea.Program, state *State) *Presenter {
	return &Presenter{program: program, state: state}
}

// Render pushes a fresh browser frame.
func (p *Presenter) Render(hosts []fleet.HostView) {
	p.program.Send(hostsMsg(hosts))
}

// RenderSession pushes a frame of the connected host's detail view.
func (p *Presenter) RenderSession(host fleet.HostView) {
	p.program.Send(sessionFrameMsg(host))
}

// ShowMessage displays text transiently, clearing it after hint.
func (p *Presenter) ShowMessage(text string, hint time.Duration) {
	p.program.Send(noticeMsg{text: text, hint: hint})
}

// PromptInput opens an input overlay and blocks until the user answers
// or dismisses it. A pending prompt is abandoned if the program is
// shutting down.
func (p *Presenter) PromptInput(label string, mask bool) (string, bool) {
	resp := make(chan promptResult, 1)
	p.program.Send(promptMsg{label: label, mask: mask, resp: resp})
	for {
		select {
		case r := <-resp:
			return r.value, r.ok
		case <-time.After(200 * time.Millisecond):
			if p.EndRequested() {
				return "", false
			}
		}
	}
}

func (p *Presenter) SelectedIndex() (int, bool) {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	if p.state.selected == nil {
		return 0, false
	}
	return *p.state.selected, true
}

// ClearSelection drops the pending selection and re-arms the session
// end flag for the next connection.
func (p *Presenter) ClearSelection() {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	p.state.selected = nil
	p.state.sessionEnd = false
}

func (p *Presenter) EndRequested() bool {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	return p.state.end
}

// SessionEnded reports whether the user backed out of the detail view.
func (p *Presenter) SessionEnded() bool {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	return p.state.sessionEnd || p.state.end
}
