// Package tui is the terminal presentation layer: a browse table over the
// host directory, a per-host session view, and the prompt/notice overlays
// the session router drives through the Presenter bridge.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/tonhe/spyglass/internal/fleet"
)

type mode int

const (
	modeBrowse mode = iota
	modeSession
	modePrompt
)

type (
	hostsMsg        []fleet.HostView
	sessionFrameMsg fleet.HostView
	noticeMsg       struct {
		text string
		hint time.Duration
	}
	clearNoticeMsg struct{ seq int }
	promptMsg      struct {
		label string
		mask  bool
		resp  chan promptResult
	}
	promptResult struct {
		value string
		ok    bool
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	state    *State
	keys     KeyMap
	sty      *Styles
	columns  []fleet.ColumnSpec
	mode     mode
	prevMode mode

	hosts  []fleet.HostView
	cursor int
	frame  *fleet.HostView

	notice    string
	noticeSeq int

	prompt *promptMsg
	input  textinput.Model

	width  int
	height int
}

// NewModel creates the browser model over the shared control state.
func NewModel(columns []fleet.ColumnSpec, state *State) Model {
	return Model{
		state:   state,
		keys:    DefaultKeyMap,
		sty:     NewStyles(),
		columns: columns,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case hostsMsg:
		m.hosts = msg
		if m.cursor >= len(m.hosts) {
			m.cursor = len(m.hosts) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		if m.mode == modeSession {
			m.mode = modeBrowse
		}
		return m, nil

	case sessionFrameMsg:
		frame := fleet.HostView(msg)
		m.frame = &frame
		if m.mode == modeBrowse {
			m.mode = modeSession
		}
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		m.noticeSeq++
		seq := m.noticeSeq
		return m, tea.Tick(msg.hint, func(time.Time) tea.Msg {
			return clearNoticeMsg{seq: seq}
		})

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case promptMsg:
		m.prompt = &msg
		m.prevMode = m.mode
		m.mode = modePrompt
		m.input = textinput.New()
		if msg.mask {
			m.input.EchoMode = textinput.EchoPassword
		}
		m.input.Focus()
		return m, textinput.Blink

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modePrompt:
		switch {
		case key.Matches(msg, m.keys.Select):
			m.prompt.resp <- promptResult{value: m.input.Value(), ok: true}
			m.prompt = nil
			m.mode = m.prevMode
			return m, nil
		case key.Matches(msg, m.keys.Back):
			m.prompt.resp <- promptResult{ok: false}
			m.prompt = nil
			m.mode = m.prevMode
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modeSession:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.state.endSession()
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			m.state.endSession()
			m.state.requestEnd()
			return m, tea.Quit
		}

	case modeBrowse:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.hosts)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.hosts) > 0 {
				m.state.setSelected(m.cursor)
			}
		case key.Matches(msg, m.keys.Quit):
			m.state.requestEnd()
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.mode {
	case modeSession:
		body = m.sessionView()
	default:
		body = m.browseView()
	}

	if m.mode == modePrompt && m.prompt != nil {
		body += "\n" + m.sty.Popup.Render(m.prompt.label+"\n"+m.input.View())
	}
	if m.notice != "" {
		body += "\n" + m.sty.Popup.Render(m.notice)
	}
	return body
}

func (m Model) browseView() string {
	var b strings.Builder

	header := []string{pad("HOST", 16), pad("ADDRESS", 22), pad("STATUS", 10)}
	for _, col := range m.columns {
		header = append(header, pad(strings.ToUpper(col.MetricKey()), 14))
	}
	b.WriteString(m.sty.Header.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	if len(m.hosts) == 0 {
		b.WriteString(m.sty.Help.Render("No agents yet — waiting for configuration or discovery..."))
		b.WriteString("\n")
	}
	for i, h := range m.hosts {
		cells := []string{
			pad(h.Name, 16),
			pad(fmt.Sprintf("%s:%d", h.IP, h.Port), 22),
			m.sty.Status(h.Status).Render(pad(h.Status.String(), 10)),
		}
		for _, col := range m.columns {
			cells = append(cells, pad(metricCell(h, col), 14))
		}
		row := strings.Join(cells, " ")
		if i == m.cursor {
			row = m.sty.Cursor.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString(m.sty.Help.Render("↑/↓ move · enter connect · q quit"))
	return b.String()
}

func (m Model) sessionView() string {
	if m.frame == nil {
		return "Connecting..."
	}
	h := m.frame
	var b strings.Builder
	title := fmt.Sprintf("%s (%s:%d) — %s", h.Name, h.IP, h.Port, h.Status)
	b.WriteString(m.sty.Header.Render(title))
	b.WriteString("\n\n")
	for _, col := range m.columns {
		b.WriteString(fmt.Sprintf("  %-24s %s\n", col.MetricKey(), metricCell(*h, col)))
	}
	for name, v := range h.Metrics {
		if !strings.HasPrefix(name, "system.") {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-24s %s\n", name, formatValue(v)))
	}
	b.WriteString("\n")
	b.WriteString(m.sty.Help.Render("esc back to browser · q quit"))
	return b.String()
}

// metricCell formats one column cell. Values are only trusted while the
// host is ONLINE; any other status renders a placeholder.
func metricCell(h fleet.HostView, col fleet.ColumnSpec) string {
	if h.Status != fleet.StatusOnline && h.Status != fleet.StatusSNMP {
		return "-"
	}
	v, ok := h.Metrics[col.MetricKey()]
	if !ok {
		return "-"
	}
	return formatValue(v)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', 1, 64)
	case nil:
		return "-"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
