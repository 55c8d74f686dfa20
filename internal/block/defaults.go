package block

import (
	"regexp"
	"strings"

	"linemark/internal/grammar"
	"linemark/internal/inline"
)

// Names of the built-in line grammar entries, also used as type tags.
const (
	NameHeading        = "Heading"
	NameQuote          = "Quote"
	NameUnorderedList  = "UnorderedList"
	NameOrderedList    = "OrderedList"
	NameHorizontalRule = "HorizontalRule"
	NameCodeBlock      = "CodeBlock"
)

// Span names for structured sub-pieces of default renderings.
const (
	SpanLanguage = "Language"
	SpanCheckbox = "Checkbox"
)

var (
	headingRe   = regexp.MustCompile(`^(#{1,6}) (.*)$`)
	quoteRe     = regexp.MustCompile(`^(> )(.*)$`)
	unorderedRe = regexp.MustCompile(`^(\s*)([-*+]) (?:(\[[ xX]\]) )?(.*)$`)
	orderedRe   = regexp.MustCompile(`^(\s*)(\d+\.) (.*)$`)
	hruleRe     = regexp.MustCompile(`^ {0,3}(?:(?:- *){3,}|(?:\* *){3,}|(?:_ *){3,})$`)
	fenceOpenRe = regexp.MustCompile("^(`{3,})[ \t]*([^`\\s]*)[ \t]*$")
	fenceEndRe  = regexp.MustCompile("^`{3,}[ \t]*$")
)

// DefaultEntries returns the built-in line grammar in priority order.
// The fenced code block comes first so a fence line is never mistaken
// for a list item or rule; horizontal rules outrank unordered lists for
// the shared "- - -" shapes.
func DefaultEntries(f *inline.Formatter) []grammar.LineEntry {
	return []grammar.LineEntry{
		{Name: NameCodeBlock, Block: codeBlockRule()},
		{Name: NameHeading, Line: headingRule(f)},
		{Name: NameQuote, Line: quoteRule(f)},
		{Name: NameHorizontalRule, Line: hruleRule()},
		{Name: NameUnorderedList, Line: unorderedRule(f)},
		{Name: NameOrderedList, Line: orderedRule(f)},
	}
}

// DefaultGrammar builds the built-in line grammar.
func DefaultGrammar(f *inline.Formatter) *grammar.LineGrammar {
	g, err := grammar.NewLineGrammar(DefaultEntries(f)...)
	if err != nil {
		// Defaults are static; failing to build them is a programming
		// error, not a runtime condition.
		panic(err)
	}
	return g
}

func headingRule(f *inline.Formatter) *grammar.LineRule {
	return &grammar.LineRule{
		Match: regexMatch(headingRe),
		Render: func(lc grammar.LineCapture) grammar.RenderedLine {
			spans := []grammar.Span{grammar.Mark(lc.Groups[0] + " ")}
			return grammar.RenderedLine{Spans: append(spans, contentSpans(f, lc.Groups[1])...)}
		},
	}
}

func quoteRule(f *inline.Formatter) *grammar.LineRule {
	return &grammar.LineRule{
		Match: regexMatch(quoteRe),
		Render: func(lc grammar.LineCapture) grammar.RenderedLine {
			spans := []grammar.Span{grammar.Mark(lc.Groups[0])}
			return grammar.RenderedLine{Spans: append(spans, contentSpans(f, lc.Groups[1])...)}
		},
	}
}

func unorderedRule(f *inline.Formatter) *grammar.LineRule {
	return &grammar.LineRule{
		Match: regexMatch(unorderedRe),
		Render: func(lc grammar.LineCapture) grammar.RenderedLine {
			indent, bullet, checkbox, rest := lc.Groups[0], lc.Groups[1], lc.Groups[2], lc.Groups[3]
			spans := []grammar.Span{grammar.Mark(indent + bullet + " ")}
			if checkbox != "" {
				cb := grammar.Mark(checkbox + " ")
				cb.Name = SpanCheckbox
				spans = append(spans, cb)
			}
			return grammar.RenderedLine{Spans: append(spans, contentSpans(f, rest)...)}
		},
	}
}

func orderedRule(f *inline.Formatter) *grammar.LineRule {
	return &grammar.LineRule{
		Match: regexMatch(orderedRe),
		Render: func(lc grammar.LineCapture) grammar.RenderedLine {
			spans := []grammar.Span{grammar.Mark(lc.Groups[0] + lc.Groups[1] + " ")}
			return grammar.RenderedLine{Spans: append(spans, contentSpans(f, lc.Groups[2])...)}
		},
	}
}

func hruleRule() *grammar.LineRule {
	return &grammar.LineRule{
		Match: regexMatch(hruleRe),
		Render: func(lc grammar.LineCapture) grammar.RenderedLine {
			return grammar.Line(grammar.Mark(lc.Line))
		},
	}
}

// codeBlockRule implements the fenced code block: a backtick run of
// three or more with an optional language word opens it, raw content
// lines follow, and a line consisting of a backtick run of three or
// more closes it. A fence that never closes runs to end of document.
func codeBlockRule() *grammar.BlockRule {
	return &grammar.BlockRule{
		Open: func(line string) (grammar.BlockCapture, grammar.RenderedLine, bool) {
			m := fenceOpenRe.FindStringSubmatch(line)
			if m == nil {
				return grammar.BlockCapture{}, grammar.RenderedLine{}, false
			}
			fence, lang := m[1], m[2]
			spans := []grammar.Span{grammar.Mark(fence)}
			if lang != "" {
				l := grammar.Mark(lang)
				l.Name = SpanLanguage
				spans = append(spans, l)
			}
			bc := grammar.BlockCapture{Line: line, Groups: []string{fence, lang}}
			return bc, grammar.RenderedLine{Spans: spans}, true
		},
		Continues: func(line string, _ grammar.BlockCapture) (grammar.RenderedLine, bool) {
			if !fenceEndRe.MatchString(line) {
				return grammar.RenderedLine{}, false
			}
			return grammar.Line(grammar.Mark(strings.TrimRight(line, " \t"))), true
		},
		RenderMiddle: func(line string) grammar.RenderedLine {
			return grammar.Line(grammar.Content(line))
		},
	}
}

// regexMatch adapts a compiled pattern into a line matcher whose
// capture groups are the pattern's submatches.
func regexMatch(re *regexp.Regexp) func(string) (grammar.LineCapture, bool) {
	return func(line string) (grammar.LineCapture, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return grammar.LineCapture{}, false
		}
		return grammar.LineCapture{Line: line, Groups: m[1:]}, true
	}
}

// contentSpans runs text through the inline formatter, collapsing the
// empty-line placeholder a blank remainder would produce.
func contentSpans(f *inline.Formatter, text string) []grammar.Span {
	if text == "" {
		return nil
	}
	return f.Format(text).Spans
}
