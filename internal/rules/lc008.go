package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC008 flags a synchronous materializing call on a store-rooted chain
// inside an asynchronous method, or inside one reachable from an
// asynchronous method. The call blocks a cooperatively scheduled context
// instead of suspending.
type LC008 struct{}

func (LC008) ID() string         { return "LC008" }
func (LC008) Severity() Severity { return SeverityWarning }
func (LC008) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC008) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) {
		return nil
	}
	fn := syntax.EnclosingFunction(n)
	if fn == nil {
		return nil
	}
	fnName := syntax.NameOf(rc.File, fn)
	if fnName == "" || !rc.Sem.InAsyncContext(fnName) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return nil
	}

	var findings []Finding
	for _, op := range chain.Ops {
		if semantic.MaterializingOps[op.Name] && !semantic.AsyncMaterializingOps[op.Name] {
			findings = append(findings, rc.finding(r, op.Span(), op.Name, fnName))
		}
	}
	return findings
}
