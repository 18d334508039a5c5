// Package speech implements the read-aloud pipeline: choosing the
// span of a note to vocalize, cleaning markdown markup out of it, and
// driving a synthesizer line by line while advancing the editing
// cursor.
package speech

import "context"

// Position is a line/column location in a document. Columns are byte
// offsets within the line, matching what editor surfaces report.
type Position struct {
	Line int
	Ch   int
}

// Span is the contiguous text region chosen for one session, plus the
// cursor the session starts advancing from.
type Span struct {
	Text  string
	Start Position
}

// Voice is a named, language-tagged profile exposed by a synthesizer.
type Voice struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"` // BCP 47 tag, e.g. "en-US"
}

// Utterance is one request to vocalize a string with a voice.
type Utterance struct {
	Text  string
	Voice Voice
}

// TextSource is the editor surface a session reads from and advances.
// Line numbers are zero-based; GetRange is inclusive of from and
// exclusive of to in the usual editor sense (to points one past the
// last character wanted).
type TextSource interface {
	// GetSelection returns the currently selected text, or "" when
	// nothing is selected.
	GetSelection() string

	// GetCursor returns the current cursor position. Hosts report the
	// cursor of a selection ambiguously; see SelectSpan.
	GetCursor() Position

	// GetLine returns the full text of line n without its newline.
	GetLine(n int) string

	// LastLine returns the index of the last line in the document.
	LastLine() int

	// GetRange returns the text between two positions.
	GetRange(from, to Position) string

	// GetValue returns the whole document text.
	GetValue() string

	// SetCursor moves the visible cursor.
	SetCursor(pos Position)
}

// Synthesizer is the speech capability a session speaks through.
//
// Speak blocks until the utterance has finished playing or ctx is
// cancelled. Empty or whitespace-only utterances must complete
// immediately without error so callers can keep line bookkeeping
// uniform. Cancel silences current audio and discards anything
// queued; after Cancel a blocked Speak call must return promptly, and
// its completion must not be relied on by callers.
type Synthesizer interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) error
	Cancel()
}
