package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// nondeterministicMembers are static member accesses whose value differs per
// evaluation.
var nondeterministicMembers = map[string]bool{
	"DateTime.Now": true, "DateTime.UtcNow": true, "DateTime.Today": true,
	"DateTimeOffset.Now": true, "DateTimeOffset.UtcNow": true,
}

// LC004 flags construction of process-local non-deterministic values inside
// a filter or projection expression on a store-rooted chain. Each
// translation or evaluation may re-invoke the generator.
type LC004 struct{}

func (LC004) ID() string         { return "LC004" }
func (LC004) Severity() Severity { return SeverityWarning }
func (LC004) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC004) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return nil
	}

	var findings []Finding
	boundary := chain.Boundary()
	for i, op := range chain.Ops {
		if i >= boundary {
			break
		}
		if !semantic.FilterOps[op.Name] && !semantic.ProjectOps[op.Name] {
			continue
		}
		for _, arg := range op.Args {
			syntax.Walk(arg, func(c *sitter.Node) bool {
				desc, ok := r.nondeterministic(rc.File, c)
				if !ok {
					return true
				}
				fd := rc.finding(r, syntax.NodeSpan(c), desc, op.Name)
				fd.RelatedSpans = []syntax.Span{op.Span()}
				findings = append(findings, fd)
				return false
			})
		}
	}
	return findings
}

// nondeterministic matches fresh-unique-identifier generation, clock reads,
// and random sources.
func (r *LC004) nondeterministic(f *syntax.File, n *sitter.Node) (string, bool) {
	switch n.Type() {
	case syntax.KindInvocation:
		if fn := n.ChildByFieldName("function"); fn != nil && f.Text(fn) == "Guid.NewGuid" {
			return "Guid.NewGuid()", true
		}
	case syntax.KindMemberAccess:
		// Skip the function part of an invocation; handled above.
		if p := n.Parent(); p != nil && p.Type() == syntax.KindInvocation {
			if fn := p.ChildByFieldName("function"); fn != nil && fn.Equal(n) {
				return "", false
			}
		}
		if text := f.Text(n); nondeterministicMembers[text] {
			return text, true
		}
	case syntax.KindObjectCreation:
		if t := n.ChildByFieldName("type"); t != nil && f.Text(t) == "Random" {
			return "new Random()", true
		}
	}
	return "", false
}
