package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/spyglass/internal/fleet"
)

// Styles holds the lipgloss styles for the browser views.
type Styles struct {
	Header   lipgloss.Style
	Row      lipgloss.Style
	Cursor   lipgloss.Style
	Popup    lipgloss.Style
	Help     lipgloss.Style
	statuses map[fleet.Status]lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Row:    lipgloss.NewStyle(),
		Cursor: lipgloss.NewStyle().Bold(true).Reverse(true),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Foreground(lipgloss.Color("229")),
		Help: lipgloss.NewStyle().Faint(true),
		statuses: map[fleet.Status]lipgloss.Style{
			fleet.StatusOnline:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			fleet.StatusOffline:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			fleet.StatusProtected: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			fleet.StatusSNMP:      lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
			fleet.StatusUnknown:   lipgloss.NewStyle().Faint(true),
		},
	}
}

// Status returns the style for a connection status.
func (s *Styles) Status(status fleet.Status) lipgloss.Style {
	if st, ok := s.statuses[status]; ok {
		return st
	}
	return s.Row
}
