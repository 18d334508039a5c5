package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
)

var helpViewStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}).
	Background(lipgloss.AdaptiveColor{Light: "#F2F2F2", Dark: "#1B1B1B"}).
	Render

func (m Model) helpView() string {
	s := "\n"
	s += "space    read note aloud\n"
	s += "s        read from the cursor line\n"
	s += "c/esc    stop reading\n"
	s += "\n"
	s += "j/↓      move cursor down\n"
	s += "k/↑      move cursor up\n"
	s += "g/home   go to top\n"
	s += "G/end    go to bottom\n"
	s += "\n"
	s += "v        toggle rendered preview\n"
	s += "y        copy cursor line\n"
	s += "r        reload note from disk\n"
	s += "\n"
	s += "?        close help\n"
	s += "q        quit"

	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring.
	lines := strings.Split(s, "\n")
	if m.width > 0 {
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}
	}

	// Pad to the viewport height so the status bar stays put.
	for len(lines) < m.viewport.Height {
		lines = append(lines, strings.Repeat(" ", max(0, m.width)))
	}

	return helpViewStyle(strings.Join(lines, "\n")) + "\n"
}

func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
