package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"linemark/internal/block"
	"linemark/internal/grammar"
	"linemark/internal/inline"
	"linemark/internal/linediff"
)

func newDocument(t *testing.T, opts ...Option) *Document {
	t.Helper()
	doc, err := New(opts...)
	require.NoError(t, err)
	return doc
}

func TestParse_ReplacesState(t *testing.T) {
	doc := newDocument(t)

	doc.Parse([]string{"# one", "two"})
	require.Equal(t, 2, doc.LineCount())

	doc.Parse([]string{"only"})
	require.Equal(t, 1, doc.LineCount())
	require.Equal(t, []string{"only"}, doc.Lines())
}

func TestParse_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching("[a-z#`*> -]{0,12}"), 0, 8).Draw(t, "lines")
		doc, err := New()
		require.NoError(t, err)

		first := append([]grammar.RenderedLine(nil), doc.Parse(lines)...)
		second := doc.Parse(lines)

		require.Equal(t, len(first), len(second))
		for i := range first {
			require.True(t, first[i].Equal(second[i]))
		}
	})
}

func TestParse_CopiesInputLines(t *testing.T) {
	doc := newDocument(t)
	input := []string{"a", "b"}
	doc.Parse(input)

	input[0] = "mutated"
	got, err := doc.Line(0)
	require.NoError(t, err)
	require.Equal(t, "a", got)
}

func TestLineTypeOf(t *testing.T) {
	doc := newDocument(t)
	doc.Parse([]string{"# title", "plain", "> quote", "```", "code", "```"})

	tests := []struct {
		num  int
		want string
	}{
		{0, block.NameHeading},
		{1, block.TagDefault},
		{2, block.NameQuote},
		{3, block.NameCodeBlock},
		{4, block.NameCodeBlock},
		{5, block.NameCodeBlock},
	}
	for _, tt := range tests {
		got, err := doc.LineTypeOf(tt.num)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "line %d", tt.num)
	}

	_, err := doc.LineTypeOf(6)
	require.ErrorIs(t, err, ErrLineOutOfRange)
	_, err = doc.LineTypeOf(-1)
	require.ErrorIs(t, err, ErrLineOutOfRange)
}

func TestLine_Bounds(t *testing.T) {
	doc := newDocument(t)
	doc.Parse([]string{"a"})

	got, err := doc.Line(0)
	require.NoError(t, err)
	require.Equal(t, "a", got)

	_, err = doc.Line(1)
	require.ErrorIs(t, err, ErrLineOutOfRange)
}

func TestLineAt(t *testing.T) {
	doc := newDocument(t)
	// Offsets: "ab" covers 0..2, separator at 2 belongs to line 0's
	// end, "cde" starts at 3.
	doc.Parse([]string{"ab", "cde"})

	require.Equal(t, 6, doc.TotalLength())
	require.Equal(t, []int{0, 3}, doc.LineStartOffsets())

	tests := []struct {
		pos  int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{3, 1},
		{5, 1},
		{6, 1}, // end of document addresses the last line
	}
	for _, tt := range tests {
		got, err := doc.LineAt(tt.pos)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "pos %d", tt.pos)
	}

	_, err := doc.LineAt(7)
	require.ErrorIs(t, err, ErrPosOutOfRange)
	_, err = doc.LineAt(-1)
	require.ErrorIs(t, err, ErrPosOutOfRange)
}

func TestLineAt_CountsRunesNotBytes(t *testing.T) {
	doc := newDocument(t)
	doc.Parse([]string{"héllo", "wörld"})

	require.Equal(t, 11, doc.TotalLength())

	got, err := doc.LineAt(6)
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestLineAt_EmptyDocument(t *testing.T) {
	doc := newDocument(t)
	doc.Parse(nil)

	_, err := doc.LineAt(0)
	require.ErrorIs(t, err, ErrPosOutOfRange)
}

func TestUpdate_ProducesReplayableScript(t *testing.T) {
	doc := newDocument(t)
	before := append([]grammar.RenderedLine(nil), doc.Parse([]string{"- one", "- two"})...)

	script := doc.Update([]string{"- one", "- [x] done", "- two"})

	require.Len(t, script.Ops, 3)
	assert.Equal(t, linediff.Retain(1), script.Ops[0])
	assert.Equal(t, 0, script.Ops[1].Old, "insert covers no old lines")
	assert.Equal(t, linediff.Retain(1), script.Ops[2])

	replayed, err := linediff.Apply(before, script)
	require.NoError(t, err)
	require.Equal(t, len(doc.Rendered()), len(replayed))
	for i := range replayed {
		require.True(t, replayed[i].Equal(doc.Rendered()[i]))
	}
}

func TestUpdate_NoChange(t *testing.T) {
	doc := newDocument(t)
	doc.Parse([]string{"a", "b"})

	script := doc.Update([]string{"a", "b"})
	require.True(t, script.Unchanged())
}

func TestUpdate_FromEmptyDocument(t *testing.T) {
	doc := newDocument(t)

	script := doc.Update([]string{"# hi"})
	require.Len(t, script.Ops, 1)
	require.Equal(t, linediff.OpReplace, script.Ops[0].Kind)
}

func TestNew_WithLineRuleOverride(t *testing.T) {
	doc := newDocument(t, WithLineRules(grammar.DisabledLineEntry(block.NameHeading)))
	doc.Parse([]string{"# not a heading"})

	tag, err := doc.LineTypeOf(0)
	require.NoError(t, err)
	require.Equal(t, block.TagDefault, tag)
}

func TestNew_WithInlineRuleOverride(t *testing.T) {
	doc := newDocument(t, WithInlineRules(grammar.DisabledInlineEntry(inline.NameEmphasis)))
	rendered := doc.Parse([]string{"*quiet*"})

	// With emphasis disabled no rule fits a single-star run, so the
	// stars stay literal.
	require.Equal(t, grammar.Line(grammar.Content("*quiet*")), rendered[0])
}

func TestNew_DuplicateOverrideRejected(t *testing.T) {
	_, err := New(WithLineRules(
		grammar.DisabledLineEntry(block.NameQuote),
		grammar.DisabledLineEntry(block.NameQuote),
	))
	require.ErrorIs(t, err, grammar.ErrDuplicateRule)
}

func TestID_StableAcrossParses(t *testing.T) {
	doc := newDocument(t)
	id := doc.ID()
	doc.Parse([]string{"a"})
	require.Equal(t, id, doc.ID())
	require.NotEqual(t, doc.ID(), newDocument(t).ID())
}
