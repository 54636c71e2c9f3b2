package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC009 flags a method that returns materialized entity instances from a
// store-rooted chain without a no-tracking directive when nothing in the
// method ever writes them back: change tracking is pure overhead for
// read-only data. A commit call or a mutating write to the loaded entities
// later in the scope suppresses the finding.
type LC009 struct{}

func (LC009) ID() string         { return "LC009" }
func (LC009) Severity() Severity { return SeverityInfo }
func (LC009) Kinds() []string    { return []string{syntax.KindMethodDecl, syntax.KindLocalFunction} }

func (r *LC009) Check(rc *Context, method *sitter.Node) []Finding {
	body := method.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	f := rc.File

	var findings []Finding
	returnedLocals := map[string]bool{}
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != syntax.KindReturnStatement || n.NamedChildCount() == 0 {
			return true
		}
		expr := n.NamedChild(int(n.NamedChildCount()) - 1)
		if expr.Type() == syntax.KindAwait {
			expr = expr.NamedChild(0)
		}
		expr = syntax.StripParens(expr)
		if expr == nil {
			return true
		}
		switch expr.Type() {
		case syntax.KindInvocation:
			// Direct return: nothing can follow in this scope.
			if op, ok := r.trackedEntityChain(rc, expr); ok {
				findings = append(findings, rc.finding(r, op.Span(), op.Name))
			}
		case syntax.KindIdentifier:
			returnedLocals[f.Text(expr)] = true
		}
		return true
	})

	for name := range returnedLocals {
		declarator := semantic.LocalDeclarator(f, method, name)
		if declarator == nil {
			continue
		}
		init := syntax.StripParens(syntax.InitializerOf(declarator))
		if init != nil && init.Type() == syntax.KindAwait {
			init = syntax.StripParens(init.NamedChild(0))
		}
		if init == nil || init.Type() != syntax.KindInvocation {
			continue
		}
		op, ok := r.trackedEntityChain(rc, init)
		if !ok {
			continue
		}
		if r.writtenBack(rc, body, name, declarator.EndByte()) {
			continue
		}
		findings = append(findings, rc.finding(r, op.Span(), op.Name))
	}
	return findings
}

// trackedEntityChain matches a store-rooted chain that materializes entity
// instances with tracking enabled and no projection.
func (r *LC009) trackedEntityChain(rc *Context, invocation *sitter.Node) (ChainOp, bool) {
	chain := Reconstruct(rc.File, invocation)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return ChainOp{}, false
	}
	if chain.HasOp(semantic.NoTrackingOps) || chain.HasOp(semantic.ProjectOps) {
		return ChainOp{}, false
	}
	for _, op := range chain.Ops {
		if entityMaterializers[op.Name] {
			return op, true
		}
	}
	return ChainOp{}, false
}

// writtenBack reports whether, after the materialization point, the scope
// commits the session or mutates the loaded entities (directly or through a
// loop iteration variable).
func (r *LC009) writtenBack(rc *Context, body *sitter.Node, local string, after uint32) bool {
	f := rc.File
	iterVars := map[string]bool{}
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != syntax.KindForeachStmt || n.StartByte() < after {
			return true
		}
		right := n.ChildByFieldName("right")
		left := n.ChildByFieldName("left")
		if right != nil && left != nil && left.Type() == syntax.KindIdentifier {
			if id := rootIdentifier(right); id != nil && f.Text(id) == local {
				iterVars[f.Text(left)] = true
			}
		}
		return true
	})

	written := false
	syntax.Walk(body, func(n *sitter.Node) bool {
		if written || n.EndByte() < after {
			return !written
		}
		switch n.Type() {
		case syntax.KindInvocation:
			if semantic.CommitOps[syntax.CalleeName(f, n)] && n.StartByte() > after {
				written = true
			}
		case syntax.KindAssignment:
			if n.StartByte() <= after {
				return true
			}
			if id := rootIdentifier(n.ChildByFieldName("left")); id != nil {
				name := f.Text(id)
				if name == local || iterVars[name] {
					written = true
				}
			}
		}
		return !written
	})
	return written
}
