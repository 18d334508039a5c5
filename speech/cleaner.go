package speech

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Cleaner strips markdown markup from text before vocalization so the
// markup is not read aloud literally. All transforms are idempotent:
// cleaning already-cleaned text is a no-op.
type Cleaner struct {
	// headingsAnywhere strips heading marker runs wherever they occur
	// in a line instead of only at the start. Line-anchored stripping
	// is the default; both behaviors exist in the wild and hosts can
	// pick.
	headingsAnywhere bool

	imageRe      *regexp.Regexp
	embedRe      *regexp.Regexp
	linkRe       *regexp.Regexp
	headingRe    *regexp.Regexp
	headingAnyRe *regexp.Regexp
	parenURLRe   *regexp.Regexp
	strongRe     *regexp.Regexp
	emphasisRe   *regexp.Regexp
	inlineCodeRe *regexp.Regexp
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithHeadingsAnywhere strips heading markers anywhere in a line, not
// just at the start.
func WithHeadingsAnywhere(anywhere bool) CleanerOption {
	return func(c *Cleaner) {
		c.headingsAnywhere = anywhere
	}
}

// NewCleaner creates a cleaner with compiled patterns.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		imageRe:      regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`),
		embedRe:      regexp.MustCompile(`!\[\[[^\]]*\]\]`),
		linkRe:       regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`),
		headingRe:    regexp.MustCompile(`^#+[ \t]*`),
		headingAnyRe: regexp.MustCompile(`#+[ \t]*`),
		parenURLRe:   regexp.MustCompile(`\(https?:[^)]*\)`),
		strongRe:     regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`),
		emphasisRe:   regexp.MustCompile(`\*([^*]+)\*`),
		inlineCodeRe: regexp.MustCompile("`([^`]*)`"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CleanLine strips the markup of one line. Image and wiki-style embed
// syntax is removed before link rewriting so a stray "!" is never
// left behind. Whitespace is preserved as-is: the result may be empty
// or consist of spaces, and such lines are still dispatched so cursor
// advancement stays uniform.
func (c *Cleaner) CleanLine(line string) string {
	line = c.imageRe.ReplaceAllString(line, "")
	line = c.embedRe.ReplaceAllString(line, "")
	line = c.linkRe.ReplaceAllString(line, "$1")

	if c.headingsAnywhere {
		line = c.headingAnyRe.ReplaceAllString(line, "")
	} else {
		line = c.headingRe.ReplaceAllString(line, "")
	}

	line = c.parenURLRe.ReplaceAllString(line, "")

	// Inline formatting reads badly aloud; unwrap it. Strong before
	// emphasis, as in any markdown stripper.
	line = c.strongRe.ReplaceAllString(line, "$1$2")
	line = c.emphasisRe.ReplaceAllString(line, "$1")
	line = c.inlineCodeRe.ReplaceAllString(line, "$1")

	return line
}

// CleanLines cleans every line of a span, preserving line count.
func (c *Cleaner) CleanLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = c.CleanLine(line)
	}
	return out
}

var fenceRe = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

// ScrubCodeBlocks blanks the lines of fenced and indented code blocks
// while preserving the document's line structure, so per-line cursor
// bookkeeping is unaffected. Block detection uses the goldmark AST
// rather than ad-hoc fence matching.
func ScrubCodeBlocks(markdown string) string {
	if markdown == "" {
		return markdown
	}

	src := []byte(markdown)
	lines := strings.Split(markdown, "\n")

	// Byte offset of the start of each line, for mapping AST segments
	// back to line numbers.
	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}
	lineOf := func(pos int) int {
		lo, hi := 0, len(starts)-1
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if starts[mid] <= pos {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		return lo
	}

	blank := make(map[int]bool)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() != ast.KindFencedCodeBlock && n.Kind() != ast.KindCodeBlock {
			return ast.WalkContinue, nil
		}

		segs := n.Lines()
		if segs.Len() == 0 {
			return ast.WalkContinue, nil
		}
		first := lineOf(segs.At(0).Start)
		last := lineOf(segs.At(segs.Len()-1).Stop - 1)
		for i := first; i <= last; i++ {
			blank[i] = true
		}

		// Fenced blocks also have delimiter lines around the content.
		if n.Kind() == ast.KindFencedCodeBlock {
			if first > 0 && fenceRe.MatchString(lines[first-1]) {
				blank[first-1] = true
			}
			if last+1 < len(lines) && fenceRe.MatchString(lines[last+1]) {
				blank[last+1] = true
			}
		}
		return ast.WalkContinue, nil
	})

	if len(blank) == 0 {
		return markdown
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if blank[i] {
			out[i] = ""
		} else {
			out[i] = line
		}
	}
	return strings.Join(out, "\n")
}
