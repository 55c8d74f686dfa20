package preview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linemark/internal/grammar"
)

func TestRenderLine_EmptyLine(t *testing.T) {
	r := New(Options{ShowMarks: true})
	require.Equal(t, "", r.RenderLine(grammar.EmptyLine()))
}

func TestRenderLine_PlainContent(t *testing.T) {
	r := New(Options{ShowMarks: true})
	out := r.RenderLine(grammar.Line(grammar.Content("hello")))
	require.Contains(t, out, "hello")
}

func TestRenderLine_MarkVisibility(t *testing.T) {
	line := grammar.Line(grammar.Mark("# "), grammar.Content("title"))

	shown := New(Options{ShowMarks: true}).RenderLine(line)
	assert.Contains(t, shown, "#")
	assert.Contains(t, shown, "title")

	hidden := New(Options{ShowMarks: false}).RenderLine(line)
	assert.NotContains(t, hidden, "#")
	assert.Contains(t, hidden, "title")
}

func TestRenderLine_HidesNestedMarks(t *testing.T) {
	line := grammar.Line(
		grammar.Content("say "),
		grammar.Group("Emphasis", grammar.Mark("*"), grammar.Content("hi"), grammar.Mark("*")),
	)

	out := New(Options{ShowMarks: false}).RenderLine(line)
	assert.NotContains(t, out, "*")
	assert.Contains(t, out, "hi")
}

func TestRenderLine_UnescapesOutput(t *testing.T) {
	out := New(Options{ShowMarks: true}).RenderLine(
		grammar.Line(grammar.Content("a &lt;b&gt; &amp; c")))

	assert.Contains(t, out, "a <b> & c")
	assert.NotContains(t, out, "&lt;")
}

func TestRenderLine_WidthCap(t *testing.T) {
	line := grammar.Line(grammar.Content("this line is much too long"))

	out := New(Options{ShowMarks: true, Width: 10}).RenderLine(line)
	assert.LessOrEqual(t, lipgloss.Width(out), 10)

	uncapped := New(Options{ShowMarks: true}).RenderLine(line)
	assert.Equal(t, lipgloss.Width(uncapped), len("this line is much too long"))
}

func TestRender_OneOutputLinePerInputLine(t *testing.T) {
	r := New(Options{ShowMarks: true})
	out := r.Render([]grammar.RenderedLine{
		grammar.Line(grammar.Content("a")),
		grammar.EmptyLine(),
		grammar.Line(grammar.Content("b")),
	})

	require.Equal(t, 3, len(strings.Split(out, "\n")))
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "passthrough", input: "plain", want: "plain"},
		{name: "angles", input: "&lt;a&gt;", want: "<a>"},
		{name: "ampersand", input: "a &amp; b", want: "a & b"},
		{name: "double escape stays", input: "&amp;lt;", want: "&lt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unescape(tt.input))
		})
	}
}
