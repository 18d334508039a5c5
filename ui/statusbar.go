package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	statusBarHeight = 1
	ellipsis        = "…"
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	redFg     = lipgloss.AdaptiveColor{Light: "#D0021B", Dark: "#ED567A"}

	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(lipgloss.Color("#5A56E0")).
			Bold(true).
			Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarSpeakingStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(redFg).
				Background(statusBarBg).
				Render

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render
)

func (m Model) statusBarView(b *strings.Builder) {
	logo := logoStyle(" NoteVox ")

	percent := math.Max(0, math.Min(1, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*100))

	helpNote := statusBarHelpStyle(" ␣ read · s from cursor · c stop · q quit ")

	note := m.statusNote()
	note = truncate.StringWithTail(" "+note+" ", uint(max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	noteStyle := statusBarNoteStyle
	if m.lastError != "" {
		noteStyle = statusBarErrorStyle
	} else if m.speaking {
		noteStyle = statusBarSpeakingStyle
	}
	note = noteStyle(note)

	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := noteStyle(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s", logo, note, emptySpace, scrollPercent, helpNote)
}

func (m Model) statusNote() string {
	name := m.cfg.NoteName
	if name == "" {
		name = "(stdin)"
	}
	if !m.buffer.ModTime().IsZero() {
		name += " · " + humanize.Time(m.buffer.ModTime())
	}

	switch {
	case m.lastError != "":
		return name + " | error: " + m.lastError
	case m.speaking && m.sessionTotal > 0:
		return fmt.Sprintf("%s | reading %d/%d", name, m.sessionLine, m.sessionTotal)
	case m.speaking:
		return name + " | reading"
	case m.statusMessage != "":
		return name + " | " + m.statusMessage
	default:
		return name
	}
}
