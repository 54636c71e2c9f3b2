package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// comparisonMethods are instance methods whose receiver is being compared;
// a case fold feeding them is just as unsargable as one inside an operator
// comparison.
var comparisonMethods = map[string]bool{
	"Equals": true, "Contains": true, "StartsWith": true, "EndsWith": true,
	"CompareTo": true,
}

// LC014 flags a case-folding transform applied to a mapped member that is
// compared or used as an ordering key inside a predicate or ordering
// operator on a store-rooted chain. The store cannot use an index over the
// transformed value and falls back to a full scan.
type LC014 struct{}

func (LC014) ID() string         { return "LC014" }
func (LC014) Severity() Severity { return SeverityWarning }
func (LC014) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC014) Check(rc *Context, n *sitter.Node) []Finding {
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
		ordering := semantic.OrderingLikeOps(op.Name)
		if !ordering && !semantic.FilterOps[op.Name] {
			continue
		}
		for _, arg := range op.Args {
			if arg.Type() != syntax.KindLambda {
				continue
			}
			params := syntax.LambdaParams(rc.File, arg)
			body := syntax.LambdaBody(arg)
			if len(params) == 0 || body == nil {
				continue
			}
			findings = append(findings, r.checkFolds(rc, body, params, ordering)...)
		}
	}
	return findings
}

func (r *LC014) checkFolds(rc *Context, body *sitter.Node, params []string, ordering bool) []Finding {
	f := rc.File
	var findings []Finding
	syntax.Walk(body, func(c *sitter.Node) bool {
		if c.Type() != syntax.KindInvocation {
			return true
		}
		fold := syntax.CalleeName(f, c)
		if !semantic.CaseFoldOps[fold] {
			return true
		}
		recv, _ := syntax.Callee(c)
		member, ok := r.mappedMember(f, recv, params)
		if !ok {
			return true
		}
		// Ordering keys are always flagged; predicates only when the folded
		// value feeds a comparison.
		if !ordering && !r.compared(rc, c) {
			return true
		}
		findings = append(findings, rc.finding(r, syntax.NodeSpan(c), fold, member))
		return true
	})
	return findings
}

// mappedMember matches a member access rooted at one of the lambda's
// parameters, e.g. `u.Name` for parameter u.
func (r *LC014) mappedMember(f *syntax.File, recv *sitter.Node, params []string) (string, bool) {
	recv = syntax.StripParens(recv)
	if recv == nil || recv.Type() != syntax.KindMemberAccess {
		return "", false
	}
	root := rootIdentifier(recv)
	if root == nil {
		return "", false
	}
	rootName := f.Text(root)
	for _, p := range params {
		if p == rootName {
			if name := recv.ChildByFieldName("name"); name != nil {
				return f.Text(name), true
			}
		}
	}
	return "", false
}

// compared reports whether the fold result feeds an operator comparison or
// a comparison method call.
func (r *LC014) compared(rc *Context, fold *sitter.Node) bool {
	f := rc.File
	for p := fold.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case syntax.KindBinary:
			if comparisonOps[syntax.BinaryOperator(f, p)] {
				return true
			}
			return false
		case syntax.KindMemberAccess:
			// Receiver of a comparison method: x.Name.ToLower().Equals(...)
			gp := p.Parent()
			if gp != nil && gp.Type() == syntax.KindInvocation {
				if comparisonMethods[syntax.CalleeName(f, gp)] {
					return true
				}
			}
		case syntax.KindLambda:
			return false
		}
	}
	return false
}
