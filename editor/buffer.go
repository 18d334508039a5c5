// Package editor provides the in-memory note buffer read-aloud
// sessions operate on, plus change watching for open notes.
package editor

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/notevox/notevox/speech"
)

// Buffer is a line-addressed view of one note. It implements the text
// source contract sessions read from: selection, cursor, per-line
// access, and ranged extraction. All methods are safe for concurrent
// use; a session goroutine advances the cursor while the UI reads it.
type Buffer struct {
	mu sync.RWMutex

	path    string
	modTime time.Time

	lines  []string
	cursor speech.Position

	// Selection anchors. selAnchor is where the drag started,
	// selHead where it ended; the cursor sits at the head, which for
	// a backward drag is the start of the selected text and for a
	// forward drag its end.
	selected  bool
	selAnchor speech.Position
	selHead   speech.Position
}

// NewBuffer creates a buffer over text.
func NewBuffer(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

// Load reads a note from disk.
func Load(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat note: %w", err)
	}

	b := NewBuffer(string(data))
	b.path = path
	b.modTime = info.ModTime()
	return b, nil
}

// Reload re-reads the note from disk, keeping the cursor clamped to
// the new content and dropping any selection.
func (b *Buffer) Reload() error {
	b.mu.RLock()
	path := b.path
	b.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("buffer is not backed by a file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to reload note: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat note: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = strings.Split(string(data), "\n")
	b.modTime = info.ModTime()
	b.selected = false
	b.cursor = b.clamp(b.cursor)
	return nil
}

// Path returns the backing file path, if any.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// ModTime returns the backing file's modification time.
func (b *Buffer) ModTime() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modTime
}

// GetValue returns the whole note.
func (b *Buffer) GetValue() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// GetLine returns line n without its newline, or "" out of range.
func (b *Buffer) GetLine(n int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// LastLine returns the index of the final line.
func (b *Buffer) LastLine() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines) - 1
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// GetCursor returns the current cursor.
func (b *Buffer) GetCursor() speech.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// SetCursor moves the cursor, clamped to the note's content. Moving
// the cursor does not clear a selection; sessions advance the cursor
// while the user's selection stays visible.
func (b *Buffer) SetCursor(pos speech.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = b.clamp(pos)
}

// GetRange returns the text between two positions, from inclusive to
// exclusive.
func (b *Buffer) GetRange(from, to speech.Position) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	from = b.clamp(from)
	to = b.clamp(to)
	if to.Line < from.Line || (to.Line == from.Line && to.Ch < from.Ch) {
		from, to = to, from
	}

	if from.Line == to.Line {
		return b.lines[from.Line][from.Ch:to.Ch]
	}
	parts := make([]string, 0, to.Line-from.Line+1)
	parts = append(parts, b.lines[from.Line][from.Ch:])
	for i := from.Line + 1; i < to.Line; i++ {
		parts = append(parts, b.lines[i])
	}
	parts = append(parts, b.lines[to.Line][:to.Ch])
	return strings.Join(parts, "\n")
}

// Select marks the text between anchor and head as selected and puts
// the cursor at the head, mirroring how editor surfaces report drag
// selections.
func (b *Buffer) Select(anchor, head speech.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selAnchor = b.clamp(anchor)
	b.selHead = b.clamp(head)
	b.selected = true
	b.cursor = b.selHead
}

// SelectLine selects the whole of line n.
func (b *Buffer) SelectLine(n int) {
	line := b.GetLine(n)
	b.Select(speech.Position{Line: n}, speech.Position{Line: n, Ch: len(line)})
}

// ClearSelection drops the selection without moving the cursor.
func (b *Buffer) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = false
}

// SelectionRange returns the normalized selection bounds, or ok
// false when nothing is selected.
func (b *Buffer) SelectionRange() (from, to speech.Position, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.selected {
		return speech.Position{}, speech.Position{}, false
	}
	from, to = b.selAnchor, b.selHead
	if to.Line < from.Line || (to.Line == from.Line && to.Ch < from.Ch) {
		from, to = to, from
	}
	return from, to, true
}

// GetSelection returns the selected text, or "" when nothing is
// selected.
func (b *Buffer) GetSelection() string {
	b.mu.RLock()
	selected := b.selected
	anchor, head := b.selAnchor, b.selHead
	b.mu.RUnlock()

	if !selected {
		return ""
	}
	return b.GetRange(anchor, head)
}

// clamp bounds pos to the note. Callers hold at least a read lock.
func (b *Buffer) clamp(pos speech.Position) speech.Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(b.lines) {
		pos.Line = len(b.lines) - 1
	}
	if pos.Ch < 0 {
		pos.Ch = 0
	}
	if max := len(b.lines[pos.Line]); pos.Ch > max {
		pos.Ch = max
	}
	return pos
}
