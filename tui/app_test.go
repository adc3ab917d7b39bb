package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/tonhe/spyglass/internal/fleet"
)

func testColumns() []fleet.ColumnSpec {
	return []fleet.ColumnSpec{
		{Plugin: "cpu", Field: "total"},
		{Plugin: "mem", Field: "percent"},
	}
}

func testHosts() []fleet.HostView {
	return []fleet.HostView{
		{
			Name: "alpha", IP: "192.168.1.10", Port: 61209,
			Status:  fleet.StatusOnline,
			Metrics: map[string]any{"cpu.total": 12.5, "mem.percent": 40.0},
		},
		{
			Name: "beta", IP: "192.168.1.11", Port: 61209,
			Status:  fleet.StatusOffline,
			Metrics: map[string]any{"cpu.total": 99.0},
		},
	}
}

func TestBrowseViewShowsHostsAndMasksNonOnlineValues(t *testing.T) {
	m := NewModel(testColumns(), NewState())
	next, _ := m.Update(hostsMsg(testHosts()))
	view := next.View()

	if !strings.Contains(view, "alpha") || !strings.Contains(view, "beta") {
		t.Fatalf("view missing host rows:\n%s", view)
	}
	if !strings.Contains(view, "12.5") {
		t.Errorf("online host value not rendered:\n%s", view)
	}
	if strings.Contains(view, "99.0") {
		t.Errorf("offline host should not show stale values:\n%s", view)
	}
}

func TestCursorMovesAndSelects(t *testing.T) {
	state := NewState()
	m := NewModel(testColumns(), state)
	next, _ := m.Update(hostsMsg(testHosts()))
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})

	p := NewPresenter(nil, state)
	idx, ok := p.SelectedIndex()
	if !ok || idx != 1 {
		t.Fatalf("SelectedIndex = %d, %v; want 1, true", idx, ok)
	}
	p.ClearSelection()
	if _, ok := p.SelectedIndex(); ok {
		t.Error("selection should be cleared")
	}
	_ = next
}

func TestCursorClampsWhenHostsShrink(t *testing.T) {
	m := NewModel(testColumns(), NewState())
	next, _ := m.Update(hostsMsg(testHosts()))
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(hostsMsg(testHosts()[:1]))

	model := next.(Model)
	if model.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", model.cursor)
	}
}

func TestPromptAnswerFlowsBackOnChannel(t *testing.T) {
	m := NewModel(testColumns(), NewState())
	resp := make(chan promptResult, 1)
	next, _ := m.Update(promptMsg{label: "Password needed", mask: true, resp: resp})

	for _, r := range "hunter2" {
		next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})

	got := <-resp
	if !got.ok || got.value != "hunter2" {
		t.Fatalf("prompt result = %+v, want ok with hunter2", got)
	}
	if next.(Model).mode == modePrompt {
		t.Error("model should leave prompt mode after answer")
	}
}

func TestPromptDismissedWithEscape(t *testing.T) {
	m := NewModel(testColumns(), NewState())
	resp := make(chan promptResult, 1)
	next, _ := m.Update(promptMsg{label: "Password needed", mask: true, resp: resp})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})

	got := <-resp
	if got.ok {
		t.Fatalf("dismissed prompt should report ok=false, got %+v", got)
	}
	_ = next
}

func TestSessionFrameSwitchesModeAndBrowseFrameReturns(t *testing.T) {
	state := NewState()
	m := NewModel(testColumns(), state)
	next, _ := m.Update(hostsMsg(testHosts()))
	next, _ = next.Update(sessionFrameMsg(testHosts()[0]))

	if next.(Model).mode != modeSession {
		t.Fatal("session frame should switch to session view")
	}
	if !strings.Contains(next.View(), "alpha") {
		t.Errorf("session view missing host title:\n%s", next.View())
	}

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !state.sessionEnd {
		t.Error("esc in session view should flag session end")
	}

	next, _ = next.Update(hostsMsg(testHosts()))
	if next.(Model).mode != modeBrowse {
		t.Error("browser frame should return model to browse mode")
	}
}

func TestFormatValue(t *testing.T) {
	if got := formatValue(3.14159); got != "3.1" {
		t.Errorf("formatValue(float) = %q", got)
	}
	if got := formatValue(nil); got != "-" {
		t.Errorf("formatValue(nil) = %q", got)
	}
	if got := formatValue("up 3 days"); got != "up 3 days" {
		t.Errorf("formatValue(string) = %q", got)
	}
}

func TestPadKeepsRunesIntact(t *testing.T) {
	got := pad("überwachungsserver", 8)
	if !utf8.ValidString(got) {
		t.Errorf("pad produced invalid UTF-8: %q", got)
	}
	if w := runewidth.StringWidth(got); w != 8 {
		t.Errorf("pad width = %d, want 8", w)
	}
	if got := pad("ab", 4); got != "ab  " {
		t.Errorf("pad short string = %q", got)
	}
}
