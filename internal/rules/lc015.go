package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC015 flags a positional pagination or selection operator applied to a
// store-rooted chain with no ordering operator earlier in the chain: result
// order is store-defined and unstable, so the selected page is arbitrary.
type LC015 struct{}

func (LC015) ID() string         { return "LC015" }
func (LC015) Severity() Severity { return SeverityInfo }
func (LC015) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC015) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return nil
	}
	for _, op := range chain.Ops {
		if semantic.OrderingLikeOps(op.Name) {
			return nil // ordered before any later positional operator
		}
		if semantic.PositionalOps[op.Name] {
			// One finding per chain: fixing the first positional operator
			// orders everything after it too.
			return []Finding{rc.finding(r, op.Span(), op.Name)}
		}
	}
	return nil
}
