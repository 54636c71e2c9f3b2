package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC001 flags calls to program-defined methods inside predicate, projection,
// or ordering expressions on a store-rooted chain. The store cannot
// translate them; execution either fails or silently switches to the client.
// The distinction is symbol origin, never the method's name.
type LC001 struct{}

func (LC001) ID() string         { return "LC001" }
func (LC001) Severity() Severity { return SeverityWarning }
func (LC001) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC001) Check(rc *Context, n *sitter.Node) []Finding {
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
			break // client-evaluated from here on
		}
		if !predicateOps[op.Name] {
			continue
		}
		for _, arg := range op.Args {
			if arg.Type() != syntax.KindLambda {
				continue
			}
			body := syntax.LambdaBody(arg)
			if body == nil {
				continue
			}
			findings = append(findings, r.checkClosure(rc, op, body)...)
		}
	}
	return findings
}

func (r *LC001) checkClosure(rc *Context, op ChainOp, body *sitter.Node) []Finding {
	f := rc.File
	var findings []Finding
	syntax.Walk(body, func(c *sitter.Node) bool {
		if c.Type() != syntax.KindInvocation {
			return true
		}
		recv, nameNode := syntax.Callee(c)
		if nameNode == nil {
			return true
		}
		callee := syntax.CalleeName(f, c)
		if !r.programDefined(rc, recv, callee) {
			return true
		}
		fd := rc.finding(r, syntax.NodeSpan(c), callee, op.Name)
		fd.RelatedSpans = []syntax.Span{op.Span()}
		findings = append(findings, fd)
		return true
	})
	return findings
}

// programDefined resolves the callee's origin; an unresolved symbol degrades
// to false so incomplete snippets produce no finding.
func (r *LC001) programDefined(rc *Context, recv *sitter.Node, callee string) bool {
	if recv != nil {
		recv = syntax.StripParens(recv)
		// Static or instance call on a program type, e.g. Pricing.Discount(x).
		if recv.Type() == syntax.KindIdentifier {
			if _, ok := rc.Sem.LookupType(rc.File.Text(recv)); ok {
				return rc.Sem.SymbolOrigin(callee) != semantic.OriginFramework
			}
		}
		if recv.Type() != "this_expression" {
			// Instance call on some other value: framework and entity-member
			// methods are translatable or unknown; only a program-declared
			// method is a definite finding.
			if semantic.IsFrameworkMethod(callee) {
				return false
			}
		}
	}
	return rc.Sem.SymbolOrigin(callee) == semantic.OriginProgram
}
