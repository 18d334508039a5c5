package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const lineNumberWidth = 4

var (
	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}).
			Render

	cursorLineStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#2E2E2E"}).
			Render

	selectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#89F0CB"}).
			Render
)

// lineView renders the note as numbered source lines with the cursor
// line highlighted, so the read-aloud position is visible while
// speaking.
func (m *Model) lineView() string {
	cursor := m.buffer.GetCursor()
	selFrom, selTo, selected := m.buffer.SelectionRange()
	width := uint(max(0, m.viewport.Width-lineNumberWidth-1))

	var b strings.Builder
	for i := 0; i < m.buffer.LineCount(); i++ {
		line := truncate.StringWithTail(m.buffer.GetLine(i), width, "…")

		if m.cfg.ShowLineNums {
			b.WriteString(lineNumberStyle(fmt.Sprintf("%*d ", lineNumberWidth, i+1)))
		}
		switch {
		case i == cursor.Line:
			b.WriteString(cursorLineStyle(line))
		case selected && i >= selFrom.Line && i <= selTo.Line:
			b.WriteString(selectionStyle(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkdown produces the glamour preview of the note.
func (m *Model) renderMarkdown() (string, error) {
	width := min(m.viewport.Width, 120)

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.glamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating renderer: %w", err)
	}

	out, err := r.Render(m.buffer.GetValue())
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return out, nil
}

func (m *Model) glamourStyle() string {
	if m.cfg.GlamourStyle != "" {
		return m.cfg.GlamourStyle
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
