// Package preview renders rendered-line sequences as styled terminal
// text. It is a host-surface consumer of the engine, not part of it:
// the engine's output stays structural and the styling choices live
// here.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"linemark/internal/grammar"
)

// Options controls preview output.
type Options struct {
	// Width truncates rendered lines to a display width; 0 disables.
	Width int
	// ShowMarks keeps syntax markers visible.
	ShowMarks bool
	// Light selects the light palette.
	Light bool
}

// Renderer turns rendered lines into styled terminal output.
type Renderer struct {
	opts   Options
	styles styleSet
}

type styleSet struct {
	mark     lipgloss.Style
	emphasis lipgloss.Style
	strong   lipgloss.Style
	strike   lipgloss.Style
	code     lipgloss.Style
	link     lipgloss.Style
	rule     lipgloss.Style
}

// New builds a renderer for the given options.
func New(opts Options) *Renderer {
	markColor := lipgloss.Color("240")
	codeColor := lipgloss.Color("203")
	linkColor := lipgloss.Color("39")
	if opts.Light {
		markColor = lipgloss.Color("250")
		codeColor = lipgloss.Color("160")
		linkColor = lipgloss.Color("27")
	}
	return &Renderer{
		opts: opts,
		styles: styleSet{
			mark:     lipgloss.NewStyle().Foreground(markColor),
			emphasis: lipgloss.NewStyle().Italic(true),
			strong:   lipgloss.NewStyle().Bold(true),
			strike:   lipgloss.NewStyle().Strikethrough(true),
			code:     lipgloss.NewStyle().Foreground(codeColor),
			link:     lipgloss.NewStyle().Foreground(linkColor).Underline(true),
			rule:     lipgloss.NewStyle().Foreground(markColor),
		},
	}
}

// Render styles a whole rendered-line sequence, one output line per
// rendered line.
func (r *Renderer) Render(lines []grammar.RenderedLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = r.RenderLine(line)
	}
	return strings.Join(out, "\n")
}

// RenderLine styles a single rendered line.
func (r *Renderer) RenderLine(line grammar.RenderedLine) string {
	if line.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for _, span := range line.Spans {
		b.WriteString(r.renderSpan(span, lipgloss.NewStyle()))
	}
	text := b.String()
	// MaxWidth is ANSI-aware; the runewidth check avoids re-rendering
	// lines that already fit.
	if r.opts.Width > 0 && runewidth.StringWidth(Unescape(line.PlainText())) > r.opts.Width {
		text = lipgloss.NewStyle().MaxWidth(r.opts.Width).Render(text)
	}
	return text
}

func (r *Renderer) renderSpan(span grammar.Span, inherited lipgloss.Style) string {
	style := inherited
	switch span.Name {
	case "Emphasis":
		style = style.Italic(true)
	case "StrongEmphasis":
		style = style.Bold(true)
	case "Strikethrough":
		style = style.Strikethrough(true)
	case "CodeSpan":
		style = r.styles.code
	case "Autolink", "URL", "Email":
		style = r.styles.link
	}

	if len(span.Children) > 0 {
		var b strings.Builder
		for _, c := range span.Children {
			b.WriteString(r.renderSpan(c, style))
		}
		return b.String()
	}

	switch span.Kind {
	case grammar.SpanMark:
		if !r.opts.ShowMarks {
			return ""
		}
		return r.styles.mark.Render(Unescape(span.Text))
	case grammar.SpanEmpty:
		return ""
	default:
		return style.Render(Unescape(span.Text))
	}
}

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// Unescape reverses the engine's output encoding for display surfaces
// that render text directly rather than as markup.
func Unescape(text string) string {
	return unescaper.Replace(text)
}
