package speech

import "strings"

// SelectSpan decides what text a session vocalizes and which cursor it
// starts advancing from.
//
// Policy, in order: a non-empty selection is used verbatim; otherwise
// a remembered resume cursor scopes the span from that cursor to the
// end of the document; otherwise the whole document is used starting
// at (0,0).
func SelectSpan(src TextSource, resume *Position) Span {
	if sel := src.GetSelection(); sel != "" {
		return Span{Text: sel, Start: selectionStart(src, sel)}
	}

	if resume != nil {
		last := src.LastLine()
		end := Position{Line: last, Ch: len(src.GetLine(last))}
		return Span{Text: src.GetRange(*resume, end), Start: *resume}
	}

	return Span{Text: src.GetValue(), Start: Position{}}
}

// selectionStart works out where a selection actually begins. Editor
// hosts report the cursor of a backward (bottom-up) selection at its
// end, so the reported cursor cannot be trusted as the start: the
// selection's first line is compared against the cursor line's text
// truncated from the cursor column, and on mismatch the start line is
// walked back by the selection's extra line count with the column
// reset to zero.
func selectionStart(src TextSource, sel string) Position {
	cur := src.GetCursor()
	selLines := strings.Split(sel, "\n")

	lineText := src.GetLine(cur.Line)
	tail := ""
	if cur.Ch >= 0 && cur.Ch <= len(lineText) {
		tail = lineText[cur.Ch:]
	}

	if selLines[0] == tail {
		return cur
	}

	start := cur.Line - (len(selLines) - 1)
	if start < 0 {
		start = 0
	}
	return Position{Line: start, Ch: 0}
}
