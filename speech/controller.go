package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// SessionReason tells observers why a session ended.
type SessionReason int

const (
	// ReasonComplete means every line in the span was spoken.
	ReasonComplete SessionReason = iota
	// ReasonCancelled means the user stopped the session.
	ReasonCancelled
	// ReasonSuperseded means a newer session replaced this one.
	ReasonSuperseded
	// ReasonError means the synthesizer failed mid-session.
	ReasonError
)

// String returns the string representation of the reason.
func (r SessionReason) String() string {
	switch r {
	case ReasonComplete:
		return "complete"
	case ReasonCancelled:
		return "cancelled"
	case ReasonSuperseded:
		return "superseded"
	case ReasonError:
		return "error"
	default:
		return "unknown"
	}
}

// LineEvent is reported after each line of a session has been spoken.
type LineEvent struct {
	Index  int      // zero-based index within the session
	Text   string   // cleaned text that was vocalized
	Cursor Position // document position of the line
}

// StartEvent is reported once when a session begins.
type StartEvent struct {
	Lines int
	Start Position
}

// DoneEvent is reported once when a session ends for any reason.
type DoneEvent struct {
	Reason SessionReason
}

// Controller drives read-aloud sessions over a text source. At most
// one session is active at a time; starting a new one supersedes the
// previous session, which winds down without emitting further lines.
type Controller struct {
	mu sync.Mutex

	source TextSource
	synth  Synthesizer

	settings Settings
	cleaner  *Cleaner
	machine  *StateMachine
	logger   *log.Logger

	// token identifies the live session. Bumping it is how older
	// goroutines learn they have been superseded.
	token  uint64
	cancel context.CancelFunc

	// savedCursor remembers where a cancelled session stopped so the
	// next cursor-start session resumes from there.
	savedCursor *Position

	// Callbacks. Invoked from the session goroutine, never while the
	// controller mutex is held.
	onStart func(StartEvent)
	onLine  func(LineEvent)
	onDone  func(DoneEvent)
	onError func(error)
}

// NewController creates a controller over a text source and a
// synthesizer.
func NewController(source TextSource, synth Synthesizer, settings Settings, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}

	var opts []CleanerOption
	if settings.HeadingsAnywhere {
		opts = append(opts, WithHeadingsAnywhere(true))
	}

	return &Controller{
		source:   source,
		synth:    synth,
		settings: settings,
		cleaner:  NewCleaner(opts...),
		machine:  NewStateMachine(),
		logger:   logger,
	}
}

// OnStart registers a callback invoked when a session begins.
func (c *Controller) OnStart(fn func(StartEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStart = fn
}

// OnLine registers a callback invoked after each spoken line.
func (c *Controller) OnLine(fn func(LineEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLine = fn
}

// OnDone registers a callback invoked when a session ends.
func (c *Controller) OnDone(fn func(DoneEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDone = fn
}

// OnError registers a callback invoked when a session fails.
func (c *Controller) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// State returns the current session state.
func (c *Controller) State() StateType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Speak starts a session over the selection if one exists, otherwise
// over the whole document. Any running session is superseded first.
func (c *Controller) Speak() error {
	return c.speak(false)
}

// SpeakFromCursor starts a session from the saved resume point when a
// previous session was cancelled, otherwise from the current cursor,
// reading through to the end of the document. A selection still takes
// precedence over both.
func (c *Controller) SpeakFromCursor() error {
	return c.speak(true)
}

func (c *Controller) speak(fromCursor bool) error {
	c.mu.Lock()

	// Supersede whatever is running before selecting a new span.
	c.token++
	tok := c.token
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	superseded := false
	if c.machine.Current() == StateSpeaking {
		superseded = true
		c.synth.Cancel()
		c.machine.Transition(StateCancelling)
		c.machine.Transition(StateIdle)
	}

	var resume *Position
	if fromCursor {
		if c.savedCursor != nil {
			resume = c.savedCursor
		} else {
			cur := c.source.GetCursor()
			resume = &Position{Line: cur.Line}
		}
	}

	span := SelectSpan(c.source, resume)
	if span.Text == "" {
		done := c.onDone
		c.mu.Unlock()
		if superseded && done != nil {
			done(DoneEvent{Reason: ReasonSuperseded})
		}
		return ErrNoContent
	}

	text := span.Text
	if c.settings.SkipCodeBlocks {
		text = ScrubCodeBlocks(text)
	}
	lines := strings.Split(text, "\n")

	if !c.machine.Transition(StateSpeaking) {
		c.mu.Unlock()
		return ErrStateTransition
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.logger.Debug("speech session starting",
		"token", tok,
		"lines", len(lines),
		"startLine", span.Start.Line,
	)

	done := c.onDone
	start := c.onStart
	c.mu.Unlock()

	if superseded && done != nil {
		done(DoneEvent{Reason: ReasonSuperseded})
	}
	if start != nil {
		start(StartEvent{Lines: len(lines), Start: span.Start})
	}

	go c.run(ctx, tok, span.Start, lines)
	return nil
}

// Cancel stops the active session. The cursor position reached so far
// is kept so SpeakFromCursor can resume from it.
func (c *Controller) Cancel() error {
	c.mu.Lock()

	if c.machine.Current() != StateSpeaking {
		c.mu.Unlock()
		return ErrNotSpeaking
	}

	c.token++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.machine.Transition(StateCancelling)
	c.synth.Cancel()
	c.machine.Transition(StateIdle)
	done := c.onDone

	c.logger.Debug("speech session cancelled", "token", c.token)
	c.mu.Unlock()

	if done != nil {
		done(DoneEvent{Reason: ReasonCancelled})
	}
	return nil
}

// run speaks one session's lines in order. It exits silently the
// moment it notices it has been superseded or cancelled; the action
// that bumped the token already reported the outcome.
func (c *Controller) run(ctx context.Context, tok uint64, start Position, lines []string) {
	voices := c.synth.Voices()

	for i, raw := range lines {
		if ctx.Err() != nil || !c.live(tok) {
			return
		}

		text := c.cleaner.CleanLine(raw)
		cursor := Position{Line: start.Line + i}
		if i == 0 {
			cursor.Ch = start.Ch
		}

		if c.settings.FollowCursor {
			c.source.SetCursor(cursor)
		}
		c.rememberCursor(tok, cursor)

		if c.settings.SkipBlankLines && strings.TrimSpace(text) == "" {
			c.emitLine(tok, LineEvent{Index: i, Text: text, Cursor: cursor})
			continue
		}

		voice := ChooseVoice(voices, c.settings.DefaultVoice, text, c.settings.EnglishRatio)

		if err := c.synth.Speak(ctx, Utterance{Text: text, Voice: voice}); err != nil {
			if ctx.Err() != nil || !c.live(tok) {
				return
			}
			c.fail(tok, NewSessionError(err, "synthesizer", "speak"))
			return
		}

		c.emitLine(tok, LineEvent{Index: i, Text: text, Cursor: cursor})
	}

	c.finish(tok)
}

// live reports whether tok still identifies the active session.
func (c *Controller) live(tok uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tok == c.token
}

// rememberCursor records the resume point for tok's session.
func (c *Controller) rememberCursor(tok uint64, pos Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok == c.token {
		c.savedCursor = &Position{Line: pos.Line}
	}
}

func (c *Controller) emitLine(tok uint64, ev LineEvent) {
	c.mu.Lock()
	fn := c.onLine
	ok := tok == c.token
	c.mu.Unlock()
	if ok && fn != nil {
		fn(ev)
	}
}

func (c *Controller) finish(tok uint64) {
	c.mu.Lock()
	if tok != c.token {
		c.mu.Unlock()
		return
	}
	c.savedCursor = nil
	c.cancel = nil
	c.machine.Transition(StateIdle)
	done := c.onDone
	c.logger.Debug("speech session complete", "token", tok)
	c.mu.Unlock()

	if done != nil {
		done(DoneEvent{Reason: ReasonComplete})
	}
}

func (c *Controller) fail(tok uint64, err error) {
	c.mu.Lock()
	if tok != c.token {
		c.mu.Unlock()
		return
	}
	c.cancel = nil
	c.machine.Transition(StateIdle)
	done := c.onDone
	onErr := c.onError
	c.logger.Error("speech session failed", "token", tok, "err", err)
	c.mu.Unlock()

	if onErr != nil {
		onErr(err)
	}
	if done != nil {
		done(DoneEvent{Reason: ReasonError})
	}
}
