// Package inline formats one line's raw text into a span tree using the
// inline portion of a grammar: ordered match rules first (escapes,
// autolinks, code spans, bare URLs and emails), then a CommonMark-style
// delimiter-run algorithm for emphasis-like constructs.
package inline

import (
	"strings"
	"unicode"

	"linemark/internal/grammar"
)

// Formatter renders single lines of raw text. It is stateless between
// calls and safe for concurrent use once constructed.
type Formatter struct {
	grammar *grammar.InlineGrammar
}

// NewFormatter returns a formatter over the given inline grammar.
func NewFormatter(g *grammar.InlineGrammar) *Formatter {
	return &Formatter{grammar: g}
}

// Grammar returns the inline grammar the formatter runs on.
func (f *Formatter) Grammar() *grammar.InlineGrammar { return f.grammar }

// delimEntry is one open-delimiter stack slot: the delimiter character,
// how much of its run is still unconsumed, and the output buffered
// before the run was pushed.
type delimEntry struct {
	char      rune
	remaining int
	buffered  []grammar.Span
}

// Format renders text into a span sequence. The scan is a single left
// to right pass over runes; the delimiter stack is always fully drained
// by end of line, so no construct ever spans multiple lines.
func (f *Formatter) Format(text string) grammar.RenderedLine {
	runes := []rune(text)
	if len(runes) == 0 {
		return grammar.EmptyLine()
	}

	var out []grammar.Span
	var stack []delimEntry
	pos := 0

scan:
	for pos < len(runes) {
		rest := runes[pos:]

		for _, e := range f.grammar.Entries() {
			if e.Match == nil {
				continue
			}
			if n, cap, ok := e.Match.Match(rest); ok && n > 0 {
				out = append(out, e.Match.Render(cap))
				pos += n
				continue scan
			}
		}

		c := runes[pos]
		if f.grammar.IsDelimiter(c) {
			out, stack, pos = f.delimiterRun(runes, pos, out, stack)
			continue
		}

		out = appendLiteral(out, string(c))
		pos++
	}

	// Drain bottom-to-top: every entry still open flushes back as its
	// pre-open buffer followed by its unconsumed delimiters as literal
	// text.
	for i := len(stack) - 1; i >= 0; i-- {
		out = flushEntry(stack[i], out)
	}

	out = coalesce(out)
	if len(out) == 0 {
		return grammar.EmptyLine()
	}
	return grammar.RenderedLine{Spans: out}
}

// delimiterRun handles the maximal run of one delimiter character at
// pos: close against the stack where permitted, open a new entry where
// permitted, flush the rest as literal text. Returns the updated output
// buffer, stack, and scan position (always past the whole run).
func (f *Formatter) delimiterRun(runes []rune, pos int, out []grammar.Span, stack []delimEntry) ([]grammar.Span, []delimEntry, int) {
	c := runes[pos]
	end := pos
	for end < len(runes) && runes[end] == c {
		end++
	}
	run := end - pos

	canOpen, canClose := flanking(runes, pos, end, c)

	if canClose {
		for run > 0 {
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].char == c {
					idx = i
					break
				}
			}
			if idx < 0 {
				break
			}

			// Entries skipped on the way down are flushed back as
			// literal text; they no longer participate.
			for len(stack)-1 > idx {
				out = flushEntry(stack[len(stack)-1], out)
				stack = stack[:len(stack)-1]
			}

			ent := &stack[idx]
			progressed := false
			for run > 0 && ent.remaining > 0 {
				rule := f.bestRule(c, min(run, ent.remaining))
				if rule == nil {
					break
				}
				delim := strings.Repeat(string(c), rule.Length)
				wrapped := rule.Render(delim, coalesce(out))
				out = []grammar.Span{wrapped}
				run -= rule.Length
				ent.remaining -= rule.Length
				progressed = true
			}
			if ent.remaining == 0 {
				out = prepend(ent.buffered, out)
				stack = stack[:idx]
			}
			if !progressed {
				break
			}
		}
	}

	if run > 0 && canOpen && len(f.grammar.DelimiterRulesFor(c)) > 0 {
		stack = append(stack, delimEntry{char: c, remaining: run, buffered: out})
		out = nil
		run = 0
	}

	if run > 0 {
		out = appendLiteral(out, strings.Repeat(string(c), run))
	}
	return out, stack, end
}

// bestRule picks the delimiter rule for c consuming the most characters
// still satisfiable by both sides; priority order breaks ties.
func (f *Formatter) bestRule(c rune, avail int) *grammar.DelimiterRule {
	var best *grammar.DelimiterRule
	for _, r := range f.grammar.DelimiterRulesFor(c) {
		if r.Length > avail {
			continue
		}
		if best == nil || r.Length > best.Length {
			best = r
		}
	}
	return best
}

// flanking classifies the run [pos,end) of character c. Start and end
// of line count as whitespace. A run can open when it is not followed
// by whitespace and either is not followed by punctuation or is
// preceded by whitespace or punctuation; can close mirrors that on the
// preceding side. A lone underscore-class delimiter that could do both
// is restricted to punctuation-adjacent positions so formatting never
// triggers mid-word.
func flanking(runes []rune, pos, end int, c rune) (canOpen, canClose bool) {
	before := ' '
	if pos > 0 {
		before = runes[pos-1]
	}
	after := ' '
	if end < len(runes) {
		after = runes[end]
	}

	canOpen = !isWS(after) && (!isPunct(after) || isWS(before) || isPunct(before))
	canClose = !isWS(before) && (!isPunct(before) || isWS(after) || isPunct(after))

	if end-pos == 1 && underscoreClass(c) && canOpen && canClose {
		canOpen = isPunct(before)
		canClose = isPunct(after)
	}
	return canOpen, canClose
}

// underscoreClass reports whether c belongs to the delimiter family that
// must not trigger formatting inside a word.
func underscoreClass(c rune) bool { return c == '_' }

func isWS(r rune) bool { return unicode.IsSpace(r) }

func isPunct(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }

// flushEntry reattaches an abandoned stack entry: its pre-open buffer,
// then its unconsumed delimiter characters as literal text, then the
// current output.
func flushEntry(e delimEntry, out []grammar.Span) []grammar.Span {
	pre := make([]grammar.Span, len(e.buffered), len(e.buffered)+len(out)+1)
	copy(pre, e.buffered)
	pre = appendLiteral(pre, strings.Repeat(string(e.char), e.remaining))
	return append(pre, out...)
}

func prepend(head, tail []grammar.Span) []grammar.Span {
	merged := make([]grammar.Span, len(head), len(head)+len(tail))
	copy(merged, head)
	return append(merged, tail...)
}

// appendLiteral appends raw text to out, output-encoded, merging into a
// trailing plain content leaf when possible.
func appendLiteral(out []grammar.Span, text string) []grammar.Span {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 && plainLeaf(out[n-1]) {
		out[n-1].Text += grammar.Escape(text)
		return out
	}
	return append(out, grammar.Content(text))
}

// coalesce merges adjacent plain content leaves.
func coalesce(spans []grammar.Span) []grammar.Span {
	if len(spans) < 2 {
		return spans
	}
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if plainLeaf(s) && plainLeaf(*last) {
			last.Text += s.Text
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func plainLeaf(s grammar.Span) bool {
	return s.Kind == grammar.SpanContent && s.Name == "" && s.Href == "" && len(s.Children) == 0
}
