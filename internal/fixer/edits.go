// Package fixer generates and applies corrective edits for the rules that
// have one. Most rules are advisory-only; a generator exists per fixable
// rule identifier and returns "no fix" whenever a precondition fails.
package fixer

import (
	"fmt"
	"sort"

	"github.com/jward/linqcheck/internal/syntax"
)

// Edit replaces a byte span with new text. An insertion is an Edit with an
// empty span.
type Edit struct {
	Span        syntax.Span
	Replacement string
}

// Conflicts reports whether two edits cannot both apply: their spans
// overlap, or they insert at the same point.
func Conflicts(a, b Edit) bool {
	if a.Span.Overlaps(b.Span) {
		return true
	}
	// Two insertions at one offset have no defined order.
	return a.Span.Start == a.Span.End && b.Span.Start == b.Span.End &&
		a.Span.Start == b.Span.Start
}

// ConflictsAny reports whether edit conflicts with any accepted edit.
func ConflictsAny(edit Edit, accepted []Edit) bool {
	for _, a := range accepted {
		if Conflicts(edit, a) {
			return true
		}
	}
	return false
}

// Apply splices a batch of pairwise non-overlapping edits into src and
// returns the result. The input batch is not mutated.
func Apply(src []byte, edits []Edit) ([]byte, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})
	for i := 1; i < len(sorted); i++ {
		if Conflicts(sorted[i-1], sorted[i]) {
			return nil, fmt.Errorf("fixer: overlapping edits at %d and %d",
				sorted[i-1].Span.Start, sorted[i].Span.Start)
		}
	}

	var out []byte
	cursor := uint32(0)
	for _, e := range sorted {
		if int(e.Span.End) > len(src) || e.Span.Start < cursor {
			return nil, fmt.Errorf("fixer: edit span [%d,%d) out of bounds", e.Span.Start, e.Span.End)
		}
		out = append(out, src[cursor:e.Span.Start]...)
		out = append(out, e.Replacement...)
		cursor = e.Span.End
	}
	out = append(out, src[cursor:]...)
	return out, nil
}

// indentAt returns the leading whitespace of the line containing offset.
func indentAt(src []byte, offset uint32) string {
	start := int(offset)
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
