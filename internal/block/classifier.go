// Package block classifies a document's lines against the line portion
// of a grammar: single-line rules, multi-line block rules with
// carried-over open state, and a default paragraph fallback through the
// inline formatter.
package block

import (
	"linemark/internal/grammar"
	"linemark/internal/inline"
)

// TagDefault is the type tag for lines no rule claims: plain paragraphs
// rendered straight through the inline formatter.
const TagDefault = "Default"

// Classifier runs the two-state line machine: Scanning (no open block)
// and InBlock. At most one block is open at any time; block content is
// raw until the active rule's own close condition fires.
type Classifier struct {
	grammar *grammar.LineGrammar
	inline  *inline.Formatter
}

// New returns a classifier over the given line grammar and inline
// formatter.
func New(g *grammar.LineGrammar, f *inline.Formatter) *Classifier {
	return &Classifier{grammar: g, inline: f}
}

// Grammar returns the line grammar the classifier runs on.
func (c *Classifier) Grammar() *grammar.LineGrammar { return c.grammar }

// Inline returns the inline formatter used for paragraph fallback.
func (c *Classifier) Inline() *inline.Formatter { return c.inline }

// Classify renders every line and assigns each exactly one type tag:
// the open block's name, the matched rule's name, or TagDefault. The
// carried block state lives entirely within one call; a block whose
// close condition never fires simply runs to the end of the document.
func (c *Classifier) Classify(lines []string) ([]grammar.RenderedLine, []string) {
	rendered := make([]grammar.RenderedLine, 0, len(lines))
	tags := make([]string, 0, len(lines))

	var (
		inBlock  bool
		openName string
		openRule *grammar.BlockRule
		openCap  grammar.BlockCapture
	)

	for _, line := range lines {
		if inBlock {
			if rl, closed := openRule.Continues(line, openCap); closed {
				rendered = append(rendered, rl)
				tags = append(tags, openName)
				inBlock = false
				continue
			}
			// Lines inside an open block are never reinterpreted, even
			// ones that would open a different block.
			if line == "" {
				rendered = append(rendered, grammar.EmptyLine())
			} else {
				rendered = append(rendered, openRule.RenderMiddle(line))
			}
			tags = append(tags, openName)
			continue
		}

		if line == "" {
			rendered = append(rendered, grammar.EmptyLine())
			tags = append(tags, TagDefault)
			continue
		}

		matched := false
		for _, e := range c.grammar.Entries() {
			if e.Block != nil {
				if bc, rl, ok := e.Block.Open(line); ok {
					rendered = append(rendered, rl)
					tags = append(tags, e.Name)
					inBlock, openName, openRule, openCap = true, e.Name, e.Block, bc
					matched = true
					break
				}
				continue
			}
			if lc, ok := e.Line.Match(line); ok {
				rendered = append(rendered, e.Line.Render(lc))
				tags = append(tags, e.Name)
				matched = true
				break
			}
		}
		if !matched {
			rendered = append(rendered, c.inline.Format(line))
			tags = append(tags, TagDefault)
		}
	}

	return rendered, tags
}
