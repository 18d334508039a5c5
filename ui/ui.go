// Package ui implements the terminal interface: a note view with a
// moving read-aloud cursor, a status bar, and key bindings for
// starting, resuming, and cancelling speech.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/notevox/notevox/editor"
	"github.com/notevox/notevox/speech"
)

// Config carries the UI-relevant settings.
type Config struct {
	NoteName     string
	GlamourStyle string `env:"NOTEVOX_STYLE"`
	ShowLineNums bool   `env:"NOTEVOX_LINE_NUMBERS"`
}

// ReloadMsg asks the UI to re-read the note from disk. The file
// watcher sends it when the note changes externally.
type ReloadMsg struct{}

type statusTimeoutMsg struct{}

// Model is the Bubble Tea model for the whole program.
type Model struct {
	cfg        Config
	buffer     *editor.Buffer
	controller *speech.Controller
	notifier   *speech.Notifier
	cleaner    *speech.Cleaner
	logger     *log.Logger

	viewport viewport.Model
	width    int
	height   int
	ready    bool

	rendered bool // glamour preview instead of the line view
	showHelp bool

	speaking     bool
	sessionLine  int
	sessionTotal int

	statusMessage string
	lastError     string
}

// New assembles the model. The notifier must already be wired to the
// controller.
func New(cfg Config, buffer *editor.Buffer, controller *speech.Controller, notifier *speech.Notifier, logger *log.Logger) Model {
	if logger == nil {
		logger = log.Default()
	}
	return Model{
		cfg:        cfg,
		buffer:     buffer,
		controller: controller,
		notifier:   notifier,
		cleaner:    speech.NewCleaner(),
		logger:     logger,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.notifier.Wait()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		newModel, cmd := m.handleKey(msg)
		return newModel, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-statusBarHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - statusBarHeight
		}
		m.setContent()

	case speech.SessionStartedMsg:
		m.speaking = true
		m.lastError = ""
		m.sessionLine = 0
		m.sessionTotal = msg.Lines
		cmds = append(cmds, m.notifier.Wait())

	case speech.RequestErrorMsg:
		m.lastError = msg.Err.Error()

	case speech.LineSpokenMsg:
		m.sessionLine = msg.Index + 1
		m.followCursor(msg.Cursor.Line)
		m.setContent()
		cmds = append(cmds, m.notifier.Wait())

	case speech.SessionDoneMsg:
		if msg.Reason != speech.ReasonSuperseded {
			m.speaking = false
		}
		if msg.Reason == speech.ReasonCancelled {
			m.statusMessage = "stopped"
		}
		m.setContent()
		cmds = append(cmds, m.notifier.Wait())

	case speech.SpeechErrorMsg:
		m.speaking = false
		m.lastError = msg.Err.Error()
		m.logger.Error("speech failed", "err", msg.Err)
		cmds = append(cmds, m.notifier.Wait())

	case ReloadMsg:
		if err := m.buffer.Reload(); err != nil {
			m.lastError = err.Error()
		} else {
			m.statusMessage = "reloaded"
		}
		m.setContent()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controller.Cancel()
		return m, tea.Quit

	case " ":
		m.statusMessage = ""
		return m, speech.SpeakCmd(m.controller)

	case "s":
		m.statusMessage = ""
		return m, speech.SpeakFromCursorCmd(m.controller)

	case "c", "esc":
		return m, speech.CancelCmd(m.controller)

	case "j", "down":
		m.moveCursor(1)
		m.setContent()
		return m, nil

	case "k", "up":
		m.moveCursor(-1)
		m.setContent()
		return m, nil

	case "g", "home":
		m.buffer.SetCursor(speech.Position{})
		m.viewport.GotoTop()
		m.setContent()
		return m, nil

	case "G", "end":
		m.buffer.SetCursor(speech.Position{Line: m.buffer.LastLine()})
		m.viewport.GotoBottom()
		m.setContent()
		return m, nil

	case "v":
		m.rendered = !m.rendered
		m.setContent()
		return m, nil

	case "y":
		line := m.cleaner.CleanLine(m.buffer.GetLine(m.buffer.GetCursor().Line))
		// Copy using OSC 52 as well as the native clipboard.
		termenv.Copy(line)
		if err := clipboard.WriteAll(line); err != nil {
			m.lastError = err.Error()
		} else {
			m.statusMessage = "copied"
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "r":
		return m, func() tea.Msg { return ReloadMsg{} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	cur := m.buffer.GetCursor()
	m.buffer.SetCursor(speech.Position{Line: cur.Line + delta})
	m.followCursor(m.buffer.GetCursor().Line)
}

// followCursor scrolls the viewport so line stays visible.
func (m *Model) followCursor(line int) {
	if !m.ready {
		return
	}
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *Model) setContent() {
	if !m.ready {
		return
	}
	if m.rendered {
		out, err := m.renderMarkdown()
		if err != nil {
			m.lastError = err.Error()
			m.rendered = false
		} else {
			m.viewport.SetContent(out)
			return
		}
	}
	m.viewport.SetContent(m.lineView())
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  loading..."
	}

	var b strings.Builder
	if m.showHelp {
		fmt.Fprint(&b, m.helpView())
	} else {
		fmt.Fprint(&b, m.viewport.View()+"\n")
	}
	m.statusBarView(&b)
	return b.String()
}
