package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC012 flags a range-removal operation handed a still-deferred store-rooted
// chain: the session fetches and tracks every row before deleting, instead
// of issuing a direct bulk delete over a materialized sequence.
type LC012 struct{}

func (LC012) ID() string         { return "LC012" }
func (LC012) Severity() Severity { return SeverityWarning }
func (LC012) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC012) Check(rc *Context, n *sitter.Node) []Finding {
	name := syntax.CalleeName(rc.File, n)
	if !semantic.RangeRemovalOps[name] {
		return nil
	}
	args := syntax.Arguments(n)
	if len(args) == 0 {
		return nil
	}
	arg := syntax.StripParens(args[0])
	if arg == nil || !rc.IsStoreRooted(arg) {
		return nil
	}
	if arg.Type() == syntax.KindInvocation && !Reconstruct(rc.File, arg).IsDeferred() {
		return nil // already materialized
	}
	return []Finding{rc.finding(r, syntax.NodeSpan(n), name)}
}
