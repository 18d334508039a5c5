package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notevox/notevox/speech"
)

// TestBufferLines tests line addressing.
func TestBufferLines(t *testing.T) {
	b := NewBuffer("alpha\nbravo\ncharlie")

	if got := b.LineCount(); got != 3 {
		t.Errorf("Expected 3 lines, got %d", got)
	}
	if got := b.LastLine(); got != 2 {
		t.Errorf("Expected last line 2, got %d", got)
	}
	if got := b.GetLine(1); got != "bravo" {
		t.Errorf("Expected bravo, got %q", got)
	}
	if got := b.GetLine(99); got != "" {
		t.Errorf("Expected empty for out of range, got %q", got)
	}
	if got := b.GetValue(); got != "alpha\nbravo\ncharlie" {
		t.Errorf("Unexpected value %q", got)
	}
}

// TestBufferCursorClamping tests cursor bounds.
func TestBufferCursorClamping(t *testing.T) {
	b := NewBuffer("short\nlonger line")

	tests := []struct {
		name string
		set  speech.Position
		want speech.Position
	}{
		{"in range", speech.Position{Line: 1, Ch: 3}, speech.Position{Line: 1, Ch: 3}},
		{"line too large", speech.Position{Line: 9, Ch: 0}, speech.Position{Line: 1, Ch: 0}},
		{"negative line", speech.Position{Line: -1, Ch: 0}, speech.Position{Line: 0, Ch: 0}},
		{"column past end", speech.Position{Line: 0, Ch: 99}, speech.Position{Line: 0, Ch: 5}},
		{"negative column", speech.Position{Line: 0, Ch: -4}, speech.Position{Line: 0, Ch: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.SetCursor(tt.set)
			if got := b.GetCursor(); got != tt.want {
				t.Errorf("SetCursor(%+v): expected %+v, got %+v", tt.set, tt.want, got)
			}
		})
	}
}

// TestBufferGetRange tests ranged extraction.
func TestBufferGetRange(t *testing.T) {
	b := NewBuffer("alpha\nbravo\ncharlie")

	tests := []struct {
		name string
		from speech.Position
		to   speech.Position
		want string
	}{
		{"within one line", speech.Position{Line: 0, Ch: 1}, speech.Position{Line: 0, Ch: 4}, "lph"},
		{"across lines", speech.Position{Line: 0, Ch: 2}, speech.Position{Line: 2, Ch: 3}, "pha\nbravo\ncha"},
		{"whole note", speech.Position{}, speech.Position{Line: 2, Ch: 7}, "alpha\nbravo\ncharlie"},
		{"inverted order normalized", speech.Position{Line: 2, Ch: 3}, speech.Position{Line: 0, Ch: 2}, "pha\nbravo\ncha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.GetRange(tt.from, tt.to); got != tt.want {
				t.Errorf("GetRange(%+v, %+v) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// TestBufferSelection tests selection reporting and the cursor
// landing on the head.
func TestBufferSelection(t *testing.T) {
	b := NewBuffer("alpha\nbravo\ncharlie")

	// Forward drag: cursor ends up at the selection's end.
	b.Select(speech.Position{Line: 0, Ch: 0}, speech.Position{Line: 1, Ch: 5})
	if got := b.GetSelection(); got != "alpha\nbravo" {
		t.Errorf("Expected forward selection, got %q", got)
	}
	if cur := b.GetCursor(); cur != (speech.Position{Line: 1, Ch: 5}) {
		t.Errorf("Expected cursor at head, got %+v", cur)
	}

	// Backward drag: same text, cursor at the selection's start.
	b.Select(speech.Position{Line: 1, Ch: 5}, speech.Position{Line: 0, Ch: 0})
	if got := b.GetSelection(); got != "alpha\nbravo" {
		t.Errorf("Expected backward selection, got %q", got)
	}
	if cur := b.GetCursor(); cur != (speech.Position{Line: 0, Ch: 0}) {
		t.Errorf("Expected cursor at head, got %+v", cur)
	}

	b.ClearSelection()
	if got := b.GetSelection(); got != "" {
		t.Errorf("Expected empty selection after clear, got %q", got)
	}
}

// TestBufferSelectLine tests whole-line selection.
func TestBufferSelectLine(t *testing.T) {
	b := NewBuffer("alpha\nbravo")
	b.SelectLine(1)

	if got := b.GetSelection(); got != "bravo" {
		t.Errorf("Expected line selected, got %q", got)
	}
}

// TestBufferSelectionFeedsSessions tests that a buffer selection
// resolves to the right session start through span selection.
func TestBufferSelectionFeedsSessions(t *testing.T) {
	b := NewBuffer("alpha\nbravo\ncharlie")

	// Forward drag over the first two lines; the reported cursor is
	// at the end, so the start must be recovered.
	b.Select(speech.Position{Line: 0, Ch: 0}, speech.Position{Line: 1, Ch: 5})
	span := speech.SelectSpan(b, nil)
	if span.Start != (speech.Position{Line: 0, Ch: 0}) {
		t.Errorf("Expected recovered start at origin, got %+v", span.Start)
	}

	// Backward drag: the cursor already sits at the start.
	b.Select(speech.Position{Line: 2, Ch: 7}, speech.Position{Line: 1, Ch: 0})
	span = speech.SelectSpan(b, nil)
	if span.Start != (speech.Position{Line: 1, Ch: 0}) {
		t.Errorf("Expected start kept at cursor, got %+v", span.Start)
	}
}

// TestBufferLoadAndReload tests file backing.
func TestBufferLoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("# One\ntwo"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := b.GetValue(); got != "# One\ntwo" {
		t.Errorf("Unexpected content %q", got)
	}
	if b.Path() != path {
		t.Errorf("Unexpected path %q", b.Path())
	}

	b.SetCursor(speech.Position{Line: 1, Ch: 3})
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := b.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := b.GetValue(); got != "x" {
		t.Errorf("Expected reloaded content, got %q", got)
	}
	if cur := b.GetCursor(); cur != (speech.Position{Line: 0, Ch: 1}) {
		t.Errorf("Expected cursor clamped after reload, got %+v", cur)
	}
}

// TestBufferReloadUnbacked tests reload without a file.
func TestBufferReloadUnbacked(t *testing.T) {
	b := NewBuffer("text")
	if err := b.Reload(); err == nil {
		t.Error("Expected error reloading an unbacked buffer")
	}
}
