// Package syntax is the tree-sitter front end for C# sources. It parses a
// buffer into a concrete syntax tree and provides span and traversal helpers
// so the rule engine never touches grammar field names directly.
package syntax

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// Span is a half-open byte range [Start, End) within one file.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// NodeSpan returns the byte span covered by a node.
func NodeSpan(n *sitter.Node) Span {
	return Span{Start: n.StartByte(), End: n.EndByte()}
}

// File is one parsed C# source buffer.
type File struct {
	Path string
	Src  []byte

	tree *sitter.Tree

	// lineStarts holds the byte offset of each line start, built lazily for
	// offset→position conversion.
	lineStarts []uint32
}

// Parse parses src as C# and returns the File. The path is a label used in
// findings; it is never opened.
func Parse(ctx context.Context, path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(csharp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse %s: %w", path, err)
	}
	return &File{Path: path, Src: src, tree: tree}, nil
}

// Close releases the underlying tree-sitter tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Root returns the tree's root node.
func (f *File) Root() *sitter.Node {
	return f.tree.RootNode()
}

// Text returns the source text covered by a node.
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.Src)
}

// SpanText returns the source text covered by a span.
func (f *File) SpanText(s Span) string {
	if int(s.End) > len(f.Src) || s.Start > s.End {
		return ""
	}
	return string(f.Src[s.Start:s.End])
}

// Position converts a byte offset into 1-based line and column.
func (f *File) Position(offset uint32) (line, col int) {
	if f.lineStarts == nil {
		f.lineStarts = append(f.lineStarts, 0)
		for i, b := range f.Src {
			if b == '\n' {
				f.lineStarts = append(f.lineStarts, uint32(i+1))
			}
		}
	}
	idx := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	return idx + 1, int(offset-f.lineStarts[idx]) + 1
}

// NodeForSpan returns the smallest named node whose byte span exactly equals
// s, or nil if no node covers it. Used to recover a node from a Finding span.
func (f *File) NodeForSpan(s Span) *sitter.Node {
	var found *sitter.Node
	Walk(f.Root(), func(n *sitter.Node) bool {
		ns := NodeSpan(n)
		if !ns.Contains(s) {
			return false
		}
		if n.IsNamed() && ns == s {
			found = n
		}
		return true
	})
	return found
}

// Walk visits root and its subtree in preorder. Returning false from fn
// skips the node's children.
func Walk(root *sitter.Node, fn func(n *sitter.Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		Walk(root.Child(i), fn)
	}
}
