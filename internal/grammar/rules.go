package grammar

// LineCapture carries what a line rule's matcher extracted from a line.
type LineCapture struct {
	// Line is the raw line the rule matched.
	Line string
	// Groups holds the rule's submatches, matcher-defined.
	Groups []string
}

// LineRule is a single-line, stateless grammar entry: Match classifies a
// raw line, Render produces its rendered form from the capture.
type LineRule struct {
	Match  func(line string) (LineCapture, bool)
	Render func(cap LineCapture) RenderedLine
}

// BlockCapture carries what a block rule's opener extracted, and is
// handed back verbatim to Continues on every subsequent line.
type BlockCapture struct {
	Line   string
	Groups []string
}

// BlockRule is a multi-line grammar entry with explicit open/continue/
// close handling. Open reports whether a line starts the block and
// renders the opening line. Continues is called for every following
// line: returning ok means "this line closes the block" and yields the
// closing line's rendered form. Lines that do not close are rendered by
// RenderMiddle. Block content is raw until the rule's own close
// condition fires; blocks never nest.
type BlockRule struct {
	Open         func(line string) (BlockCapture, RenderedLine, bool)
	Continues    func(line string, open BlockCapture) (RenderedLine, bool)
	RenderMiddle func(line string) RenderedLine
}

// LineEntry is one named slot in the line grammar: exactly one of Line
// or Block is set. The variant is fixed at registration, never probed
// at runtime.
type LineEntry struct {
	Name  string
	Line  *LineRule
	Block *BlockRule
}

// MatchCapture carries the pieces an inline match rule extracted at the
// cursor. Open and Close hold syntax runs (rendered as marks), Content
// the enclosed user text, Href an optional link target.
type MatchCapture struct {
	Open    string
	Content string
	Close   string
	Href    string
}

// MatchRule is an inline grammar entry: Match inspects the text at the
// cursor (as runes) and reports how many runes it consumes; Render
// produces the resulting span. The first rule to match wins and
// scanning resumes immediately after the consumed run.
type MatchRule struct {
	Match  func(rest []rune) (consumed int, cap MatchCapture, ok bool)
	Render func(cap MatchCapture) Span
}

// DelimiterRule describes an emphasis-like construct: a set of candidate
// delimiter characters, the run length one match consumes, and the
// wrapper for enclosed content. Delimiter runs pair greedily: when open
// and close runs both have at least two characters left, a Length-2 rule
// wins over a Length-1 rule for the same character.
type DelimiterRule struct {
	// Characters are the candidate delimiter characters, e.g. "*_".
	Characters string
	// Length is the declared run length one pairing consumes.
	Length int
	// Render wraps the enclosed content. delim is the exact consumed
	// delimiter text, identical on both sides.
	Render func(delim string, inner []Span) Span
}

// InlineEntry is one named slot in the inline grammar: exactly one of
// Match or Delim is set.
type InlineEntry struct {
	Name  string
	Match *MatchRule
	Delim *DelimiterRule
}

// DisabledLineEntry maps name to a line rule that never matches,
// effectively removing the named default from a merged grammar.
func DisabledLineEntry(name string) LineEntry {
	return LineEntry{
		Name: name,
		Line: &LineRule{
			Match:  func(string) (LineCapture, bool) { return LineCapture{}, false },
			Render: func(LineCapture) RenderedLine { return EmptyLine() },
		},
	}
}

// DisabledInlineEntry maps name to a match rule that never matches.
func DisabledInlineEntry(name string) InlineEntry {
	return InlineEntry{
		Name: name,
		Match: &MatchRule{
			Match:  func([]rune) (int, MatchCapture, bool) { return 0, MatchCapture{}, false },
			Render: func(MatchCapture) Span { return Content("") },
		},
	}
}
