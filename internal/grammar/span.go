// Package grammar defines the data model and rule registries for the
// linemark rendering engine: spans, rendered lines, and the ordered,
// name-keyed rule tables the block classifier and inline formatter run on.
package grammar

import (
	"fmt"
	"strings"
)

// SpanKind discriminates the three span flavors a rendered line is built from.
type SpanKind int

const (
	// SpanContent is user-visible text, or a container wrapping child spans.
	SpanContent SpanKind = iota
	// SpanMark is syntax-marker text (fences, bullets, delimiter runs).
	SpanMark
	// SpanEmpty is the placeholder a fully empty line renders to. It
	// carries no text but still occupies a line slot.
	SpanEmpty
)

// String returns the stable lower-case tag used in JSON output.
func (k SpanKind) String() string {
	switch k {
	case SpanContent:
		return "content"
	case SpanMark:
		return "mark"
	case SpanEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SpanKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "content":
		*k = SpanContent
	case "mark":
		*k = SpanMark
	case "empty":
		*k = SpanEmpty
	default:
		return fmt.Errorf("unknown span kind %q", string(b))
	}
	return nil
}

// Span is one node of a rendered line. A leaf span carries Text; a
// container span carries Children and a semantic Name (Emphasis,
// StrongEmphasis, CodeSpan, Autolink, ...). Literal text is stored
// output-encoded: see Escape.
type Span struct {
	Kind     SpanKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Text     string   `json:"text,omitempty"`
	Href     string   `json:"href,omitempty"`
	Children []Span   `json:"children,omitempty"`
}

// Mark returns a syntax-marker leaf span.
func Mark(text string) Span {
	return Span{Kind: SpanMark, Text: Escape(text)}
}

// Content returns a user-text leaf span.
func Content(text string) Span {
	return Span{Kind: SpanContent, Text: Escape(text)}
}

// Empty returns the empty-line placeholder span.
func Empty() Span {
	return Span{Kind: SpanEmpty}
}

// Group returns a named container span wrapping children.
func Group(name string, children ...Span) Span {
	return Span{Kind: SpanContent, Name: name, Children: children}
}

// Equal reports deep value equality of two spans.
func (s Span) Equal(o Span) bool {
	if s.Kind != o.Kind || s.Name != o.Name || s.Text != o.Text || s.Href != o.Href {
		return false
	}
	if len(s.Children) != len(o.Children) {
		return false
	}
	for i := range s.Children {
		if !s.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// PlainText reconstitutes the span's full text, marks included, with
// output encoding intact.
func (s Span) PlainText() string {
	if len(s.Children) == 0 {
		return s.Text
	}
	var b strings.Builder
	for _, c := range s.Children {
		b.WriteString(c.PlainText())
	}
	return b.String()
}

// RenderedLine is the rendered form of one raw line: an ordered span
// sequence. An empty raw line renders to exactly one SpanEmpty span.
type RenderedLine struct {
	Spans []Span `json:"spans"`
}

// Line builds a rendered line from spans.
func Line(spans ...Span) RenderedLine {
	return RenderedLine{Spans: spans}
}

// EmptyLine returns the rendered form of an empty raw line.
func EmptyLine() RenderedLine {
	return RenderedLine{Spans: []Span{Empty()}}
}

// IsEmpty reports whether the line is the empty-line placeholder form.
func (l RenderedLine) IsEmpty() bool {
	return len(l.Spans) == 1 && l.Spans[0].Kind == SpanEmpty
}

// Equal reports deep value equality of two rendered lines. The diff
// reconciler compares lines with this.
func (l RenderedLine) Equal(o RenderedLine) bool {
	if len(l.Spans) != len(o.Spans) {
		return false
	}
	for i := range l.Spans {
		if !l.Spans[i].Equal(o.Spans[i]) {
			return false
		}
	}
	return true
}

// PlainText reconstitutes the line's full text, marks included.
func (l RenderedLine) PlainText() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.PlainText())
	}
	return b.String()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Escape output-encodes structurally significant characters so raw user
// text can never be interpreted as markup downstream.
func Escape(text string) string {
	return escaper.Replace(text)
}
