package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC007 flags a materializing call on a store-rooted chain inside a loop
// body whose filter depends on the loop variable: one query per iteration
// where a single batched query with a membership predicate would do.
type LC007 struct{}

func (LC007) ID() string         { return "LC007" }
func (LC007) Severity() Severity { return SeverityWarning }
func (LC007) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC007) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) || !insideLoop(n) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return nil
	}
	if chain.IsDeferred() {
		return nil // composed but never executed here
	}

	loopVars := loopVariables(rc.File, n)
	if len(loopVars) == 0 {
		return nil
	}

	var materializer *ChainOp
	dependsOnLoop := ""
	for i := range chain.Ops {
		op := &chain.Ops[i]
		if materializer == nil &&
			(semantic.MaterializingOps[op.Name] || semantic.AsyncMaterializingOps[op.Name]) {
			materializer = op
		}
		for _, arg := range op.Args {
			for _, v := range loopVars {
				if syntax.ReferencesIdentifier(rc.File, arg, v) {
					dependsOnLoop = v
				}
			}
		}
	}
	if materializer == nil || dependsOnLoop == "" {
		return nil
	}
	return []Finding{rc.finding(r, materializer.Span(), materializer.Name, dependsOnLoop)}
}
