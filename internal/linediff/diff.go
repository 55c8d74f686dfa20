// Package linediff computes minimal update instructions between two
// rendered-line sequences. It is deliberately a single contiguous-region
// algorithm, linear in the longer sequence, not a minimum-edit-distance
// diff: the host applies the script to a live surface, where one
// contiguous splice beats an optimal but fragmented script.
package linediff

import (
	"errors"
	"fmt"

	"linemark/internal/grammar"
)

// ErrBadScript is returned when a script does not fit the sequence it
// is applied to.
var ErrBadScript = errors.New("edit script does not match old sequence")

// OpKind discriminates edit script operations.
type OpKind int

const (
	// OpRetain keeps Count lines from the old sequence unchanged.
	OpRetain OpKind = iota
	// OpReplace substitutes Old lines starting at Start with Lines.
	// Either side may be empty: a pure insert has Old == 0, a pure
	// delete has no Lines.
	OpReplace
)

// String returns the stable lower-case tag used in JSON output.
func (k OpKind) String() string {
	if k == OpRetain {
		return "retain"
	}
	return "replace"
}

// MarshalText implements encoding.TextMarshaler.
func (k OpKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OpKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "retain":
		*k = OpRetain
	case "replace":
		*k = OpReplace
	default:
		return fmt.Errorf("unknown op kind %q", string(b))
	}
	return nil
}

// Op is one edit script operation.
type Op struct {
	Kind  OpKind                 `json:"kind"`
	Count int                    `json:"count,omitempty"` // retain: lines kept
	Start int                    `json:"start,omitempty"` // replace: first old index covered
	Old   int                    `json:"old,omitempty"`   // replace: old lines covered
	Lines []grammar.RenderedLine `json:"lines,omitempty"` // replace: new lines
}

// Retain builds a retain op.
func Retain(count int) Op { return Op{Kind: OpRetain, Count: count} }

// Replace builds a replace op covering old lines [start, start+old).
func Replace(start, old int, lines []grammar.RenderedLine) Op {
	return Op{Kind: OpReplace, Start: start, Old: old, Lines: lines}
}

// EditScript is an ordered op list transforming one rendered-line
// sequence into another. Applying it to the old sequence reproduces the
// new sequence exactly.
type EditScript struct {
	Ops []Op `json:"ops"`
}

// Unchanged reports whether the script only retains.
func (s EditScript) Unchanged() bool {
	for _, op := range s.Ops {
		if op.Kind != OpRetain {
			return false
		}
	}
	return true
}

// Diff compares old and new by deep value equality. Equal-length inputs
// yield an independent single-line replace per differing index. Inputs
// of different length yield one replace covering the maximal contiguous
// changed region between the longest common prefix and suffix.
func Diff(prev, next []grammar.RenderedLine) EditScript {
	m, n := len(prev), len(next)

	if m == n {
		return diffSameLength(prev, next)
	}

	start := 0
	for start < m && start < n && prev[start].Equal(next[start]) {
		start++
	}

	// The suffix scan stops before it would overlap the prefix on the
	// shorter side.
	limit := min(m, n) - start
	k := 0
	for k < limit && prev[m-1-k].Equal(next[n-1-k]) {
		k++
	}

	var ops []Op
	if start > 0 {
		ops = append(ops, Retain(start))
	}
	ops = append(ops, Replace(start, m-k-start, cloneLines(next[start:n-k])))
	if k > 0 {
		ops = append(ops, Retain(k))
	}
	return EditScript{Ops: ops}
}

func diffSameLength(prev, next []grammar.RenderedLine) EditScript {
	var ops []Op
	run := 0
	for i := range prev {
		if prev[i].Equal(next[i]) {
			run++
			continue
		}
		if run > 0 {
			ops = append(ops, Retain(run))
			run = 0
		}
		ops = append(ops, Replace(i, 1, cloneLines(next[i:i+1])))
	}
	if run > 0 {
		ops = append(ops, Retain(run))
	}
	return EditScript{Ops: ops}
}

// Apply replays a script against old and returns the resulting
// sequence. The replay law holds for every script Diff produces:
// Apply(old, Diff(old, new)) == new.
func Apply(old []grammar.RenderedLine, script EditScript) ([]grammar.RenderedLine, error) {
	var out []grammar.RenderedLine
	cursor := 0
	for _, op := range script.Ops {
		switch op.Kind {
		case OpRetain:
			if cursor+op.Count > len(old) {
				return nil, fmt.Errorf("retain %d at line %d: %w", op.Count, cursor, ErrBadScript)
			}
			out = append(out, old[cursor:cursor+op.Count]...)
			cursor += op.Count
		case OpReplace:
			if op.Start != cursor || cursor+op.Old > len(old) {
				return nil, fmt.Errorf("replace at line %d (cursor %d): %w", op.Start, cursor, ErrBadScript)
			}
			out = append(out, op.Lines...)
			cursor += op.Old
		default:
			return nil, fmt.Errorf("op kind %d: %w", op.Kind, ErrBadScript)
		}
	}
	if cursor != len(old) {
		return nil, fmt.Errorf("script covers %d of %d lines: %w", cursor, len(old), ErrBadScript)
	}
	if out == nil {
		out = []grammar.RenderedLine{}
	}
	return out, nil
}

func cloneLines(lines []grammar.RenderedLine) []grammar.RenderedLine {
	cloned := make([]grammar.RenderedLine, len(lines))
	copy(cloned, lines)
	return cloned
}
