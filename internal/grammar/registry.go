package grammar

import (
	"errors"
	"fmt"
)

// Registry errors, reported at construction time. Parsing itself never
// fails: a registry that built successfully runs without error.
var (
	ErrDuplicateRule = errors.New("duplicate rule name")
	ErrEmptyRule     = errors.New("rule entry has no variant set")
	ErrAmbiguousRule = errors.New("rule entry has both variants set")
)

// LineGrammar is the ordered, immutable line-rule table. Iteration order
// is priority order: the first entry whose rule matches a line wins.
type LineGrammar struct {
	entries []LineEntry
}

// NewLineGrammar builds a line grammar from entries in priority order.
// Duplicate names and malformed entries are configuration errors.
func NewLineGrammar(entries ...LineEntry) (*LineGrammar, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if err := validateLineEntry(e, seen); err != nil {
			return nil, err
		}
	}
	g := &LineGrammar{entries: make([]LineEntry, len(entries))}
	copy(g.entries, entries)
	return g, nil
}

// MergeLine overlays overrides onto defaults: an override replacing an
// existing name keeps that name's position; unmentioned defaults keep
// their relative order; new names are appended after the defaults in
// override order.
func MergeLine(defaults *LineGrammar, overrides ...LineEntry) (*LineGrammar, error) {
	merged := make([]LineEntry, len(defaults.entries))
	copy(merged, defaults.entries)

	seen := make(map[string]bool, len(overrides))
	for _, ov := range overrides {
		if err := validateLineEntry(ov, seen); err != nil {
			return nil, err
		}
		replaced := false
		for i := range merged {
			if merged[i].Name == ov.Name {
				merged[i] = ov
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, ov)
		}
	}
	return &LineGrammar{entries: merged}, nil
}

// Entries returns the entries in priority order. The returned slice is
// shared; callers must not mutate it.
func (g *LineGrammar) Entries() []LineEntry {
	return g.entries
}

// Len returns the number of registered rules.
func (g *LineGrammar) Len() int { return len(g.entries) }

// Lookup returns the entry registered under name.
func (g *LineGrammar) Lookup(name string) (LineEntry, bool) {
	for _, e := range g.entries {
		if e.Name == name {
			return e, true
		}
	}
	return LineEntry{}, false
}

func validateLineEntry(e LineEntry, seen map[string]bool) error {
	if e.Line == nil && e.Block == nil {
		return fmt.Errorf("line rule %q: %w", e.Name, ErrEmptyRule)
	}
	if e.Line != nil && e.Block != nil {
		return fmt.Errorf("line rule %q: %w", e.Name, ErrAmbiguousRule)
	}
	if seen[e.Name] {
		return fmt.Errorf("line rule %q: %w", e.Name, ErrDuplicateRule)
	}
	seen[e.Name] = true
	return nil
}

// InlineGrammar is the ordered, immutable inline-rule table. Match rules
// run in priority order at every cursor position; delimiter rules kick
// in only when no match rule fires.
type InlineGrammar struct {
	entries []InlineEntry
	// delims indexes delimiter rules by candidate character, priority
	// order preserved, so the formatter can pick pairings cheaply.
	delims map[rune][]*DelimiterRule
}

// NewInlineGrammar builds an inline grammar from entries in priority order.
func NewInlineGrammar(entries ...InlineEntry) (*InlineGrammar, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if err := validateInlineEntry(e, seen); err != nil {
			return nil, err
		}
	}
	g := &InlineGrammar{entries: make([]InlineEntry, len(entries))}
	copy(g.entries, entries)
	g.indexDelims()
	return g, nil
}

// MergeInline overlays overrides onto defaults with the same position
// semantics as MergeLine.
func MergeInline(defaults *InlineGrammar, overrides ...InlineEntry) (*InlineGrammar, error) {
	merged := make([]InlineEntry, len(defaults.entries))
	copy(merged, defaults.entries)

	seen := make(map[string]bool, len(overrides))
	for _, ov := range overrides {
		if err := validateInlineEntry(ov, seen); err != nil {
			return nil, err
		}
		replaced := false
		for i := range merged {
			if merged[i].Name == ov.Name {
				merged[i] = ov
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, ov)
		}
	}
	g := &InlineGrammar{entries: merged}
	g.indexDelims()
	return g, nil
}

// Entries returns the entries in priority order. The returned slice is
// shared; callers must not mutate it.
func (g *InlineGrammar) Entries() []InlineEntry {
	return g.entries
}

// Len returns the number of registered rules.
func (g *InlineGrammar) Len() int { return len(g.entries) }

// Lookup returns the entry registered under name.
func (g *InlineGrammar) Lookup(name string) (InlineEntry, bool) {
	for _, e := range g.entries {
		if e.Name == name {
			return e, true
		}
	}
	return InlineEntry{}, false
}

// DelimiterRulesFor returns the delimiter rules that list c as a
// candidate character, in priority order.
func (g *InlineGrammar) DelimiterRulesFor(c rune) []*DelimiterRule {
	return g.delims[c]
}

// IsDelimiter reports whether any delimiter rule claims c.
func (g *InlineGrammar) IsDelimiter(c rune) bool {
	return len(g.delims[c]) > 0
}

func (g *InlineGrammar) indexDelims() {
	g.delims = make(map[rune][]*DelimiterRule)
	for i := range g.entries {
		d := g.entries[i].Delim
		if d == nil {
			continue
		}
		for _, c := range d.Characters {
			g.delims[c] = append(g.delims[c], d)
		}
	}
}

func validateInlineEntry(e InlineEntry, seen map[string]bool) error {
	if e.Match == nil && e.Delim == nil {
		return fmt.Errorf("inline rule %q: %w", e.Name, ErrEmptyRule)
	}
	if e.Match != nil && e.Delim != nil {
		return fmt.Errorf("inline rule %q: %w", e.Name, ErrAmbiguousRule)
	}
	if seen[e.Name] {
		return fmt.Errorf("inline rule %q: %w", e.Name, ErrDuplicateRule)
	}
	seen[e.Name] = true
	return nil
}
