package speech

import (
	"strings"
	"sync"
	"testing"
)

// fakeSource is an in-memory TextSource for tests. It is safe for
// concurrent use because session goroutines move the cursor while the
// test inspects it.
type fakeSource struct {
	mu        sync.Mutex
	lines     []string
	cursor    Position
	selection string
	moves     []Position
}

func newFakeSource(text string) *fakeSource {
	return &fakeSource{lines: strings.Split(text, "\n")}
}

func (f *fakeSource) GetSelection() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection
}

func (f *fakeSource) GetCursor() Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

func (f *fakeSource) GetLine(n int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < 0 || n >= len(f.lines) {
		return ""
	}
	return f.lines[n]
}

func (f *fakeSource) LastLine() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lines) - 1
}

func (f *fakeSource) GetRange(from, to Position) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if from.Line == to.Line {
		return f.lines[from.Line][from.Ch:to.Ch]
	}
	parts := []string{f.lines[from.Line][from.Ch:]}
	for i := from.Line + 1; i < to.Line; i++ {
		parts = append(parts, f.lines[i])
	}
	parts = append(parts, f.lines[to.Line][:to.Ch])
	return strings.Join(parts, "\n")
}

func (f *fakeSource) GetValue() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.lines, "\n")
}

func (f *fakeSource) SetCursor(pos Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = pos
	f.moves = append(f.moves, pos)
}

func (f *fakeSource) setSelection(sel string, cursor Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selection = sel
	f.cursor = cursor
}

// TestSelectSpanWholeDocument tests the default span.
func TestSelectSpanWholeDocument(t *testing.T) {
	src := newFakeSource("alpha\nbravo\ncharlie")

	span := SelectSpan(src, nil)

	if span.Text != "alpha\nbravo\ncharlie" {
		t.Errorf("Expected whole document, got %q", span.Text)
	}
	if span.Start != (Position{}) {
		t.Errorf("Expected start at origin, got %+v", span.Start)
	}
}

// TestSelectSpanResume tests resuming from a remembered cursor.
func TestSelectSpanResume(t *testing.T) {
	src := newFakeSource("alpha\nbravo\ncharlie")
	resume := &Position{Line: 1}

	span := SelectSpan(src, resume)

	if span.Text != "bravo\ncharlie" {
		t.Errorf("Expected span from resume point, got %q", span.Text)
	}
	if span.Start != (Position{Line: 1}) {
		t.Errorf("Expected start at resume point, got %+v", span.Start)
	}
}

// TestSelectSpanSelectionPrecedence tests that a selection wins over a
// resume cursor.
func TestSelectSpanSelectionPrecedence(t *testing.T) {
	src := newFakeSource("alpha\nbravo\ncharlie")
	src.setSelection("bravo", Position{Line: 1})

	span := SelectSpan(src, &Position{Line: 2})

	if span.Text != "bravo" {
		t.Errorf("Expected selection text, got %q", span.Text)
	}
}

// TestSelectionStart tests start-of-selection recovery from the
// ambiguous cursor editors report.
func TestSelectionStart(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		selection string
		cursor    Position
		want      Position
	}{
		{
			// The cursor sits at the selection start, so its line
			// tail matches the selection's first line.
			name:      "backward selection keeps cursor",
			doc:       "alpha\nbravo\ncharlie",
			selection: "bravo\ncharlie",
			cursor:    Position{Line: 1, Ch: 0},
			want:      Position{Line: 1, Ch: 0},
		},
		{
			// The cursor sits at the selection end, so the start is
			// walked back by the selection's extra lines.
			name:      "forward selection walks back",
			doc:       "alpha\nbravo\ncharlie",
			selection: "alpha\nbravo",
			cursor:    Position{Line: 1, Ch: 5},
			want:      Position{Line: 0, Ch: 0},
		},
		{
			name:      "mid line selection start",
			doc:       "alpha\nbravo",
			selection: "pha",
			cursor:    Position{Line: 0, Ch: 2},
			want:      Position{Line: 0, Ch: 2},
		},
		{
			name:      "single line forward selection resets column",
			doc:       "alpha\nbravo",
			selection: "alp",
			cursor:    Position{Line: 0, Ch: 3},
			want:      Position{Line: 0, Ch: 0},
		},
		{
			name:      "walk back clamps at first line",
			doc:       "alpha\nbravo",
			selection: "one\ntwo\nthree\nfour",
			cursor:    Position{Line: 1, Ch: 5},
			want:      Position{Line: 0, Ch: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(tt.doc)
			src.setSelection(tt.selection, tt.cursor)

			span := SelectSpan(src, nil)

			if span.Start != tt.want {
				t.Errorf("Expected start %+v, got %+v", tt.want, span.Start)
			}
		})
	}
}
