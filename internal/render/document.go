// Package render owns the per-document render state: raw lines, the
// last rendered-line sequence, and per-line type tags. A Document is a
// single-writer object the embedding host drives sequentially; every
// full reparse replaces its state wholesale, so nothing ever observes a
// partially updated document.
package render

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"linemark/internal/block"
	"linemark/internal/grammar"
	"linemark/internal/inline"
	"linemark/internal/linediff"
	"linemark/internal/log"
)

// Lookup errors. Callers are expected to validate host-derived bounds
// before calling in; these exist so stale positions fail loudly.
var (
	ErrLineOutOfRange = errors.New("line index out of range")
	ErrPosOutOfRange  = errors.New("position out of range")
)

// Document is the render state for one document.
type Document struct {
	id         uuid.UUID
	classifier *block.Classifier

	lines    []string
	rendered []grammar.RenderedLine
	tags     []string
}

// Option customizes a Document's grammar at construction time.
type Option func(*options)

type options struct {
	lineOverrides   []grammar.LineEntry
	inlineOverrides []grammar.InlineEntry
}

// WithLineRules merges line/block rule overrides against the built-in
// line grammar. An override replaces a same-named default in place; a
// default can be disabled via grammar.DisabledLineEntry.
func WithLineRules(overrides ...grammar.LineEntry) Option {
	return func(o *options) {
		o.lineOverrides = append(o.lineOverrides, overrides...)
	}
}

// WithInlineRules merges match/delimiter rule overrides against the
// built-in inline grammar.
func WithInlineRules(overrides ...grammar.InlineEntry) Option {
	return func(o *options) {
		o.inlineOverrides = append(o.inlineOverrides, overrides...)
	}
}

// New builds a Document with the built-in grammar merged with any
// overrides. Grammar construction is the only fallible step; parsing
// never fails afterwards.
func New(opts ...Option) (*Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	inlineGrammar, err := grammar.MergeInline(inline.DefaultGrammar(), o.inlineOverrides...)
	if err != nil {
		return nil, fmt.Errorf("inline grammar: %w", err)
	}
	formatter := inline.NewFormatter(inlineGrammar)

	lineGrammar, err := grammar.MergeLine(block.DefaultGrammar(formatter), o.lineOverrides...)
	if err != nil {
		return nil, fmt.Errorf("line grammar: %w", err)
	}

	doc := &Document{
		id:         uuid.New(),
		classifier: block.New(lineGrammar, formatter),
	}
	log.Debug(log.CatDoc, "document created",
		"id", doc.id,
		"line_rules", lineGrammar.Len(),
		"inline_rules", inlineGrammar.Len())
	return doc, nil
}

// ID returns the document's identity.
func (d *Document) ID() uuid.UUID { return d.id }

// Parse fully reparses lines, replacing the document's state, and
// returns the new rendered sequence. The returned slice is the
// document's own; treat it as read-only.
func (d *Document) Parse(lines []string) []grammar.RenderedLine {
	rendered, tags := d.classifier.Classify(lines)
	d.lines = append([]string(nil), lines...)
	d.rendered = rendered
	d.tags = tags
	log.Debug(log.CatDoc, "parsed", "id", d.id, "lines", len(lines))
	return d.rendered
}

// Update reparses lines and returns the edit script from the previous
// rendered sequence to the new one.
func (d *Document) Update(lines []string) linediff.EditScript {
	before := d.rendered
	after := d.Parse(lines)
	script := linediff.Diff(before, after)
	log.Debug(log.CatDoc, "updated", "id", d.id, "ops", len(script.Ops))
	return script
}

// Lines returns the raw lines of the last parse.
func (d *Document) Lines() []string { return d.lines }

// Rendered returns the rendered lines of the last parse.
func (d *Document) Rendered() []grammar.RenderedLine { return d.rendered }

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the raw text of line num.
func (d *Document) Line(num int) (string, error) {
	if num < 0 || num >= len(d.lines) {
		return "", fmt.Errorf("line %d of %d: %w", num, len(d.lines), ErrLineOutOfRange)
	}
	return d.lines[num], nil
}

// LineTypeOf returns the type tag of line num: the matched rule's name,
// the enclosing block's name, or block.TagDefault.
func (d *Document) LineTypeOf(num int) (string, error) {
	if num < 0 || num >= len(d.tags) {
		return "", fmt.Errorf("line %d of %d: %w", num, len(d.tags), ErrLineOutOfRange)
	}
	return d.tags[num], nil
}

// LineAt returns the index of the line containing rune position pos.
// Positions count Unicode scalar values, with one separator between
// lines; pos may equal TotalLength, addressing the end of the last
// line.
func (d *Document) LineAt(pos int) (int, error) {
	total := d.TotalLength()
	if pos < 0 || pos > total || len(d.lines) == 0 {
		return 0, fmt.Errorf("position %d of %d: %w", pos, total, ErrPosOutOfRange)
	}
	offset := 0
	for i, line := range d.lines {
		end := offset + utf8.RuneCountInString(line)
		if pos <= end {
			return i, nil
		}
		offset = end + 1
	}
	return len(d.lines) - 1, nil
}

// TotalLength returns the document length in Unicode scalar values,
// counting one separator between adjacent lines.
func (d *Document) TotalLength() int {
	total := 0
	for i, line := range d.lines {
		if i > 0 {
			total++
		}
		total += utf8.RuneCountInString(line)
	}
	return total
}

// LineStartOffsets returns each line's starting rune offset.
func (d *Document) LineStartOffsets() []int {
	offsets := make([]int, len(d.lines))
	offset := 0
	for i, line := range d.lines {
		offsets[i] = offset
		offset += utf8.RuneCountInString(line) + 1
	}
	return offsets
}
