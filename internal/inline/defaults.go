package inline

import (
	"strings"

	"linemark/internal/grammar"
)

// DefaultEntries returns the built-in inline grammar entries in priority
// order: match rules first, then emphasis-like delimiter rules. Callers
// merge their overrides against these via grammar.MergeInline.
func DefaultEntries() []grammar.InlineEntry {
	return []grammar.InlineEntry{
		{Name: NameEscape, Match: escapeRule()},
		{Name: NameAutolink, Match: autolinkRule()},
		{Name: NameCodeSpan, Match: codeSpanRule()},
		{Name: NameURL, Match: bareURLRule()},
		{Name: NameEmail, Match: bareEmailRule()},
		{Name: NameStrong, Delim: &grammar.DelimiterRule{
			Characters: "*_",
			Length:     2,
			Render:     wrap(NameStrong),
		}},
		{Name: NameEmphasis, Delim: &grammar.DelimiterRule{
			Characters: "*_",
			Length:     1,
			Render:     wrap(NameEmphasis),
		}},
		{Name: NameStrikethrough, Delim: &grammar.DelimiterRule{
			Characters: "~",
			Length:     2,
			Render:     wrap(NameStrikethrough),
		}},
	}
}

// DefaultGrammar builds the built-in inline grammar.
func DefaultGrammar() *grammar.InlineGrammar {
	g, err := grammar.NewInlineGrammar(DefaultEntries()...)
	if err != nil {
		// Defaults are static; a construction failure is a programming
		// error, not a runtime condition.
		panic(err)
	}
	return g
}

// wrap returns a delimiter renderer producing a named container with
// the delimiter run marked as syntax on both sides.
func wrap(name string) func(delim string, inner []grammar.Span) grammar.Span {
	return func(delim string, inner []grammar.Span) grammar.Span {
		children := make([]grammar.Span, 0, len(inner)+2)
		children = append(children, grammar.Mark(delim))
		children = append(children, inner...)
		children = append(children, grammar.Mark(delim))
		return grammar.Group(name, children...)
	}
}

// looksLikeURL reports whether s is a protocol-prefixed URL with a
// plausible authority.
func looksLikeURL(s string) bool {
	runes := []rune(s)
	n := urlScheme(runes)
	if n == 0 || len(runes) <= n {
		return false
	}
	if strings.ContainsFunc(s, func(r rune) bool { return isWS(r) }) {
		return false
	}
	return validAuthority(s[schemeLen(s):])
}

// looksLikeEmail reports whether s is, in its entirety, an email address.
func looksLikeEmail(s string) bool {
	runes := []rune(s)
	return len(runes) > 0 && emailLength(runes) == len(runes)
}
