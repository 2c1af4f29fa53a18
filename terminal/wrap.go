package terminal

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func truncateWithEllipsis(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	return truncate.StringWithTail(text, uint(limit), "…")
}

func fitURL(url string, limit int) string {
	if limit <= 0 || ansi.PrintableRuneWidth(url) <= limit {
		return url
	}
	if idx := strings.Index(url, "://"); idx != -1 {
		trimmed := url[idx+3:]
		if ansi.PrintableRuneWidth(trimmed) <= limit {
			return trimmed
		}
	}
	return truncateWithEllipsis(url, limit)
}

// Span is a run of text sharing one style and, optionally, one link target.
type Span struct {
	Text  string
	Style Style
	Link  string
}

type word struct {
	pieces []Span
	width  int
}

// wrapSpans greedily breaks spans into lines no wider than width. Runs of
// spaces collapse to one; "\n" forces a break. A width of zero or less
// disables wrapping.
func wrapSpans(spans []Span, width int) [][]Span {
	var (
		lines   [][]Span
		line    []Span
		lineW   int
		cur     word
		started bool
	)
	flushWord := func() {
		if len(cur.pieces) == 0 {
			return
		}
		if started && width > 0 && lineW+1+cur.width > width {
			lines = append(lines, line)
			line, lineW, started = nil, 0, false
		}
		if started {
			line = append(line, Span{Text: " "})
			lineW++
		}
		line = append(line, cur.pieces...)
		lineW += cur.width
		started = true
		cur = word{}
	}
	for _, sp := range spans {
		start := 0
		for i := 0; i < len(sp.Text); i++ {
			c := sp.Text[i]
			if c != ' ' && c != '\n' && c != '\t' {
				continue
			}
			if i > start {
				cur.add(Span{Text: sp.Text[start:i], Style: sp.Style, Link: sp.Link})
			}
			flushWord()
			if c == '\n' {
				lines = append(lines, line)
				line, lineW, started = nil, 0, false
			}
			start = i + 1
		}
		if start < len(sp.Text) {
			cur.add(Span{Text: sp.Text[start:], Style: sp.Style, Link: sp.Link})
		}
	}
	flushWord()
	if started || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

func (w *word) add(sp Span) {
	w.pieces = append(w.pieces, sp)
	w.width += ansi.PrintableRuneWidth(sp.Text)
}
