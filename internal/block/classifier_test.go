package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"linemark/internal/grammar"
	"linemark/internal/inline"
)

func newClassifier() *Classifier {
	f := inline.NewFormatter(inline.DefaultGrammar())
	return New(DefaultGrammar(f), f)
}

func TestClassify_Paragraph(t *testing.T) {
	c := newClassifier()
	rendered, tags := c.Classify([]string{"hello *world*"})

	require.Equal(t, []string{TagDefault}, tags)
	require.Len(t, rendered, 1)
	require.Equal(t, "hello *world*", rendered[0].PlainText())
	require.Equal(t, inline.NameEmphasis, rendered[0].Spans[1].Name)
}

func TestClassify_EmptyLineIsPlaceholder(t *testing.T) {
	c := newClassifier()
	rendered, tags := c.Classify([]string{"a", "", "b"})

	require.Equal(t, []string{TagDefault, TagDefault, TagDefault}, tags)
	require.True(t, rendered[1].IsEmpty(), "empty line must still occupy a line slot")
}

func TestClassify_Heading(t *testing.T) {
	tests := []struct {
		name string
		line string
		mark string
		rest string
	}{
		{name: "h1", line: "# Title", mark: "# ", rest: "Title"},
		{name: "h3", line: "### Sub", mark: "### ", rest: "Sub"},
		{name: "h6", line: "###### Deep", mark: "###### ", rest: "Deep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier()
			rendered, tags := c.Classify([]string{tt.line})

			require.Equal(t, []string{NameHeading}, tags)
			require.Equal(t, grammar.Mark(tt.mark), rendered[0].Spans[0])
			require.Equal(t, tt.line, rendered[0].PlainText())
		})
	}
}

func TestClassify_SevenHashesIsParagraph(t *testing.T) {
	c := newClassifier()
	_, tags := c.Classify([]string{"####### too deep"})
	require.Equal(t, []string{TagDefault}, tags)
}

func TestClassify_HeadingFormatsInlineContent(t *testing.T) {
	c := newClassifier()
	rendered, _ := c.Classify([]string{"# **big** news"})

	require.Equal(t, inline.NameStrong, rendered[0].Spans[1].Name)
	require.Equal(t, "# **big** news", rendered[0].PlainText())
}

func TestClassify_Quote(t *testing.T) {
	c := newClassifier()
	rendered, tags := c.Classify([]string{"> quoted *text*"})

	require.Equal(t, []string{NameQuote}, tags)
	require.Equal(t, grammar.Mark("> "), rendered[0].Spans[0])
	require.Equal(t, inline.NameEmphasis, rendered[0].Spans[2].Name)
}

func TestClassify_UnorderedList(t *testing.T) {
	tests := []struct {
		name string
		line string
		mark string
	}{
		{name: "dash", line: "- item", mark: "- "},
		{name: "star", line: "* item", mark: "* "},
		{name: "plus", line: "+ item", mark: "+ "},
		{name: "indented", line: "  - item", mark: "  - "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier()
			rendered, tags := c.Classify([]string{tt.line})

			require.Equal(t, []string{NameUnorderedList}, tags)
			require.Equal(t, grammar.Mark(tt.mark), rendered[0].Spans[0])
		})
	}
}

func TestClassify_ChecklistItem(t *testing.T) {
	c := newClassifier()
	rendered, tags := c.Classify([]string{"- [x] done", "- [ ] open"})

	require.Equal(t, []string{NameUnorderedList, NameUnorderedList}, tags)

	checked := rendered[0].Spans[1]
	assert.Equal(t, SpanCheckbox, checked.Name)
	assert.Equal(t, grammar.SpanMark, checked.Kind)
	assert.Equal(t, "[x] ", checked.Text)

	unchecked := rendered[1].Spans[1]
	assert.Equal(t, SpanCheckbox, unchecked.Name)
	assert.Equal(t, "[ ] ", unchecked.Text)
}

func TestClassify_OrderedList(t *testing.T) {
	c := newClassifier()
	rendered, tags := c.Classify([]string{"1. first", "12. twelfth"})

	require.Equal(t, []string{NameOrderedList, NameOrderedList}, tags)
	require.Equal(t, grammar.Mark("1. "), rendered[0].Spans[0])
	require.Equal(t, grammar.Mark("12. "), rendered[1].Spans[0])
}

func TestClassify_HorizontalRule(t *testing.T) {
	tests := []string{"---", "- - -", "***", "___", "-----"}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			c := newClassifier()
			rendered, tags := c.Classify([]string{line})

			require.Equal(t, []string{NameHorizontalRule}, tags,
				"rule must outrank list for %q", line)
			require.Equal(t, grammar.Line(grammar.Mark(line)), rendered[0])
		})
	}
}

func TestClassify_CodeBlock(t *testing.T) {
	c := newClassifier()
	lines := []string{"```js", "const x = 1;", "```", "after"}
	rendered, tags := c.Classify(lines)

	require.Equal(t, []string{NameCodeBlock, NameCodeBlock, NameCodeBlock, TagDefault}, tags)

	open := rendered[0]
	require.Equal(t, grammar.Mark("```"), open.Spans[0])
	require.Equal(t, SpanLanguage, open.Spans[1].Name)
	require.Equal(t, "js", open.Spans[1].Text)

	require.Equal(t, grammar.Line(grammar.Content("const x = 1;")), rendered[1])
	require.Equal(t, grammar.Line(grammar.Mark("```")), rendered[2])
}

func TestClassify_CodeBlockContentIsRaw(t *testing.T) {
	c := newClassifier()
	lines := []string{"```", "# not a heading", "- not a list", "**not bold**", "```"}
	_, tags := c.Classify(lines)

	for _, tag := range tags {
		require.Equal(t, NameCodeBlock, tag)
	}

	rendered, _ := c.Classify(lines)
	require.Equal(t, grammar.Line(grammar.Content("# not a heading")), rendered[1])
	require.Equal(t, grammar.Line(grammar.Content("**not bold**")), rendered[3])
}

func TestClassify_CodeBlockFenceWithLanguageDoesNotClose(t *testing.T) {
	// A close fence is a bare backtick run; "```js" inside an open
	// block is content.
	c := newClassifier()
	lines := []string{"```", "```js", "```"}
	rendered, tags := c.Classify(lines)

	require.Equal(t, []string{NameCodeBlock, NameCodeBlock, NameCodeBlock}, tags)
	require.Equal(t, grammar.Line(grammar.Content("```js")), rendered[1])
	require.Equal(t, grammar.Line(grammar.Mark("```")), rendered[2])
}

func TestClassify_UnterminatedCodeBlockRunsToEnd(t *testing.T) {
	c := newClassifier()
	lines := []string{"```go", "func main() {}", "still code"}
	_, tags := c.Classify(lines)

	require.Equal(t, []string{NameCodeBlock, NameCodeBlock, NameCodeBlock}, tags)
}

func TestClassify_EmptyLineInsideBlockKeepsTag(t *testing.T) {
	c := newClassifier()
	lines := []string{"```", "a", "", "b", "```"}
	rendered, tags := c.Classify(lines)

	require.Equal(t, NameCodeBlock, tags[2])
	require.True(t, rendered[2].IsEmpty())
}

func TestClassify_BlockStateResetsPerCall(t *testing.T) {
	c := newClassifier()

	_, tags := c.Classify([]string{"```", "code"})
	require.Equal(t, []string{NameCodeBlock, NameCodeBlock}, tags)

	// A fresh classify call starts in scanning state again.
	_, tags = c.Classify([]string{"# heading"})
	require.Equal(t, []string{NameHeading}, tags)
}

func TestClassify_DisabledBlockRuleFallsThrough(t *testing.T) {
	f := inline.NewFormatter(inline.DefaultGrammar())
	g, err := grammar.MergeLine(DefaultGrammar(f), grammar.DisabledLineEntry(NameCodeBlock))
	require.NoError(t, err)
	c := New(g, f)

	_, tags := c.Classify([]string{"```js", "x"})
	require.Equal(t, []string{TagDefault, TagDefault}, tags)
}

func TestClassify_CustomLineRuleOverride(t *testing.T) {
	f := inline.NewFormatter(inline.DefaultGrammar())
	shout := grammar.LineEntry{
		Name: NameHeading,
		Line: &grammar.LineRule{
			Match: func(line string) (grammar.LineCapture, bool) {
				if len(line) > 1 && line[0] == '!' {
					return grammar.LineCapture{Line: line, Groups: []string{line[1:]}}, true
				}
				return grammar.LineCapture{}, false
			},
			Render: func(lc grammar.LineCapture) grammar.RenderedLine {
				return grammar.Line(grammar.Mark("!"), grammar.Content(lc.Groups[0]))
			},
		},
	}
	g, err := grammar.MergeLine(DefaultGrammar(f), shout)
	require.NoError(t, err)
	c := New(g, f)

	rendered, tags := c.Classify([]string{"!loud", "# quiet"})
	require.Equal(t, []string{NameHeading, TagDefault}, tags,
		"replaced rule no longer matches hash headings")
	require.Equal(t, grammar.Line(grammar.Mark("!"), grammar.Content("loud")), rendered[0])
}

// Idempotence: classifying the same lines twice yields identical output.
func TestClassify_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching("[a-z#`*> -]{0,12}"), 0, 8).Draw(t, "lines")
		c := newClassifier()

		first, firstTags := c.Classify(lines)
		second, secondTags := c.Classify(lines)

		require.Equal(t, firstTags, secondTags)
		require.Equal(t, len(first), len(second))
		for i := range first {
			require.True(t, first[i].Equal(second[i]))
		}
	})
}

func TestClassify_EveryLineGetsExactlyOneTag(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(rapid.StringMatching("[a-z#`*> -]{0,12}"), 0, 10).Draw(t, "lines")
		c := newClassifier()

		rendered, tags := c.Classify(lines)
		require.Len(t, rendered, len(lines))
		require.Len(t, tags, len(lines))
		for _, tag := range tags {
			require.NotEmpty(t, tag)
		}
	})
}
