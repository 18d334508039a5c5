package speech

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between the speech session
// and the UI.

// SessionStartedMsg indicates a read-aloud session has begun.
type SessionStartedMsg struct {
	Lines int      // Total number of lines in the session
	Start Position // Where the session starts reading
}

// LineSpokenMsg indicates one line has finished playing.
type LineSpokenMsg struct {
	Index  int      // Zero-based index within the session
	Text   string   // Cleaned text that was spoken
	Cursor Position // Document position of the line
}

// SessionDoneMsg indicates the session has ended.
type SessionDoneMsg struct {
	Reason SessionReason
}

// SpeechErrorMsg indicates the session failed mid-flight.
type SpeechErrorMsg struct {
	Err error
}

// RequestErrorMsg indicates a speak request was rejected outright,
// for example because there was nothing to read.
type RequestErrorMsg struct {
	Err error
}

// Notifier adapts controller callbacks into Bubble Tea messages. The
// UI drains it with Wait, re-issuing the command after each message
// in the usual Bubble Tea fashion.
type Notifier struct {
	ch chan tea.Msg
}

// NewNotifier creates a notifier and wires it to the controller's
// callbacks.
func NewNotifier(c *Controller) *Notifier {
	n := &Notifier{ch: make(chan tea.Msg, 64)}

	c.OnStart(func(ev StartEvent) {
		n.send(SessionStartedMsg{Lines: ev.Lines, Start: ev.Start})
	})
	c.OnLine(func(ev LineEvent) {
		n.send(LineSpokenMsg{Index: ev.Index, Text: ev.Text, Cursor: ev.Cursor})
	})
	c.OnDone(func(ev DoneEvent) {
		n.send(SessionDoneMsg{Reason: ev.Reason})
	})
	c.OnError(func(err error) {
		n.send(SpeechErrorMsg{Err: err})
	})

	return n
}

// send never blocks; if the UI has fallen far behind we drop the
// message rather than stall the session goroutine.
func (n *Notifier) send(msg tea.Msg) {
	select {
	case n.ch <- msg:
	default:
	}
}

// Wait returns a command that delivers the next session message.
func (n *Notifier) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.ch
	}
}

// SpeakCmd starts a session over the selection or whole document. A
// started session announces itself through the notifier; only an
// outright rejection produces a message here.
func SpeakCmd(c *Controller) tea.Cmd {
	return func() tea.Msg {
		if err := c.Speak(); err != nil {
			return RequestErrorMsg{Err: err}
		}
		return nil
	}
}

// SpeakFromCursorCmd starts a session from the cursor or saved resume
// point.
func SpeakFromCursorCmd(c *Controller) tea.Cmd {
	return func() tea.Msg {
		if err := c.SpeakFromCursor(); err != nil {
			return RequestErrorMsg{Err: err}
		}
		return nil
	}
}

// CancelCmd stops the active session. Cancelling when nothing is
// playing is not an error worth surfacing.
func CancelCmd(c *Controller) tea.Cmd {
	return func() tea.Msg {
		_ = c.Cancel()
		return nil
	}
}
