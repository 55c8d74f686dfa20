package linediff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SegmentType indicates whether an intra-line segment is unchanged,
// added, or deleted.
type SegmentType int

const (
	SegmentUnchanged SegmentType = iota
	SegmentAdded
	SegmentDeleted
)

// Segment is a run of text inside a replaced line with its diff status.
type Segment struct {
	Type SegmentType
	Text string
}

// RefineResult holds the intra-line segments for a replaced line pair.
type RefineResult struct {
	Old []Segment // segments of the replaced line
	New []Segment // segments of the replacement line
}

// RefineLinePair computes a word-level diff between the plain text of a
// replaced line and its replacement, so a host can highlight just the
// changed runs instead of repainting the whole line. Tokens are words,
// punctuation, and individual whitespace runs.
func RefineLinePair(oldLine, newLine string) RefineResult {
	if oldLine == "" && newLine == "" {
		return RefineResult{}
	}
	if oldLine == "" {
		return RefineResult{New: []Segment{{Type: SegmentAdded, Text: newLine}}}
	}
	if newLine == "" {
		return RefineResult{Old: []Segment{{Type: SegmentDeleted, Text: oldLine}}}
	}

	dmp := diffmatchpatch.New()
	oldText := strings.Join(tokenize(oldLine), "\x00")
	newText := strings.Join(tokenize(newLine), "\x00")

	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var result RefineResult
	for _, d := range diffs {
		text := strings.ReplaceAll(d.Text, "\x00", "")
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			result.Old = append(result.Old, Segment{Type: SegmentUnchanged, Text: text})
			result.New = append(result.New, Segment{Type: SegmentUnchanged, Text: text})
		case diffmatchpatch.DiffDelete:
			result.Old = append(result.Old, Segment{Type: SegmentDeleted, Text: text})
		case diffmatchpatch.DiffInsert:
			result.New = append(result.New, Segment{Type: SegmentAdded, Text: text})
		}
	}
	return result
}

// tokenize splits a line into words, punctuation, and whitespace runs.
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range line {
		switch {
		case unicode.IsSpace(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
