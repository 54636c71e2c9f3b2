package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC002 flags a materializing conversion that occurs strictly before a
// filter or projection in the same store-rooted chain: the full result set
// is fetched and then narrowed in memory.
type LC002 struct{}

func (LC002) ID() string         { return "LC002" }
func (LC002) Severity() Severity { return SeverityWarning }
func (LC002) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC002) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return nil
	}

	conv := chain.FirstIndex(semantic.SequenceConversionOps)
	if conv < 0 {
		return nil
	}
	for _, op := range chain.Ops[conv+1:] {
		if semantic.FilterOps[op.Name] || semantic.ProjectOps[op.Name] {
			fd := rc.finding(r, chain.Ops[conv].Span(), chain.Ops[conv].Name, op.Name)
			fd.RelatedSpans = []syntax.Span{op.Span()}
			return []Finding{fd}
		}
	}
	return nil
}
