package rules

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// Facts caches per-expression predicates for the duration of one driver
// pass. Keyed by byte span, which uniquely identifies a node within a file.
type Facts struct {
	storeRooted map[syntax.Span]bool
}

// NewFacts returns an empty per-pass cache.
func NewFacts() *Facts {
	return &Facts{storeRooted: make(map[syntax.Span]bool)}
}

const chaseDepthLimit = 6

// IsStoreRooted reports whether an expression's ultimate source is a mapped
// store collection that is still deferred; operators composed on top of it
// will be translated by the store.
func (rc *Context) IsStoreRooted(n *sitter.Node) bool {
	n = syntax.StripParens(n)
	if n == nil {
		return false
	}
	span := syntax.NodeSpan(n)
	if v, ok := rc.Facts.storeRooted[span]; ok {
		return v
	}
	v := rc.storeRootedExpr(n, 0)
	rc.Facts.storeRooted[span] = v
	return v
}

func (rc *Context) storeRootedExpr(n *sitter.Node, depth int) bool {
	if n == nil || depth > chaseDepthLimit {
		return false
	}
	n = syntax.StripParens(n)
	switch n.Type() {
	case syntax.KindInvocation:
		chain := Reconstruct(rc.File, n)
		if chain.Root == nil {
			return false
		}
		return rc.storeRootedExpr(chain.Root, depth+1)

	case syntax.KindMemberAccess:
		name := n.ChildByFieldName("name")
		if name == nil {
			return false
		}
		_, ok := rc.Sem.DbSetElement(rc.File.Text(name))
		return ok

	case syntax.KindIdentifier:
		scope := syntax.EnclosingFunction(n)
		if scope == nil {
			return false
		}
		ident := rc.File.Text(n)
		if init := semantic.LocalInitializer(rc.File, scope, ident); init != nil {
			init = syntax.StripParens(init)
			if init.Type() == syntax.KindInvocation {
				chain := Reconstruct(rc.File, init)
				// A materialized or client-switched local is in memory; chains
				// over it no longer reach the store.
				if !chain.IsDeferred() || chain.Boundary() < len(chain.Ops) {
					return false
				}
			}
			return rc.storeRootedExpr(init, depth+1)
		}
		if typ, ok := rc.Sem.LocalType(scope, ident); ok {
			return isQueryableType(typ)
		}
		return false
	}
	return false
}

// ChainEntity resolves the entity type produced by a chain's root source.
func (rc *Context) ChainEntity(c *Chain) (string, bool) {
	return rc.rootEntity(c.Root, 0)
}

func (rc *Context) rootEntity(root *sitter.Node, depth int) (string, bool) {
	if root == nil || depth > chaseDepthLimit {
		return "", false
	}
	root = syntax.StripParens(root)
	switch root.Type() {
	case syntax.KindMemberAccess:
		if name := root.ChildByFieldName("name"); name != nil {
			return rc.Sem.DbSetElement(rc.File.Text(name))
		}
	case syntax.KindIdentifier:
		scope := syntax.EnclosingFunction(root)
		if scope == nil {
			return "", false
		}
		ident := rc.File.Text(root)
		if init := semantic.LocalInitializer(rc.File, scope, ident); init != nil {
			init = syntax.StripParens(init)
			if init.Type() == syntax.KindInvocation {
				inner := Reconstruct(rc.File, init)
				// A projection changes the element type beyond what the
				// single-file model can resolve.
				if inner.HasOp(semantic.ProjectOps) {
					return "", false
				}
				return rc.rootEntity(inner.Root, depth+1)
			}
			return rc.rootEntity(init, depth+1)
		}
		if typ, ok := rc.Sem.LocalType(scope, ident); ok {
			return elementOfQueryable(typ)
		}
	case syntax.KindInvocation:
		inner := Reconstruct(rc.File, root)
		if inner.Root != nil && !inner.HasOp(semantic.ProjectOps) {
			return rc.rootEntity(inner.Root, depth+1)
		}
	}
	return "", false
}

// SessionSourced reports whether an expression's chain is transitively
// sourced from one of the named session variables.
func (rc *Context) SessionSourced(expr *sitter.Node, sessions map[string]bool, depth int) bool {
	if expr == nil || depth > chaseDepthLimit {
		return false
	}
	expr = syntax.StripParens(expr)
	switch expr.Type() {
	case syntax.KindInvocation:
		chain := Reconstruct(rc.File, expr)
		return rc.SessionSourced(chain.Root, sessions, depth+1)
	case syntax.KindMemberAccess:
		recv := expr.ChildByFieldName("expression")
		recv = syntax.StripParens(recv)
		if recv != nil && recv.Type() == syntax.KindIdentifier && sessions[rc.File.Text(recv)] {
			return true
		}
		return rc.SessionSourced(recv, sessions, depth+1)
	case syntax.KindIdentifier:
		if sessions[rc.File.Text(expr)] {
			return true
		}
		scope := syntax.EnclosingFunction(expr)
		if scope == nil {
			return false
		}
		init := semantic.LocalInitializer(rc.File, scope, rc.File.Text(expr))
		return rc.SessionSourced(init, sessions, depth+1)
	}
	return false
}

func isQueryableType(typ string) bool {
	t := strings.TrimSpace(typ)
	return strings.HasPrefix(t, "IQueryable<") || strings.HasPrefix(t, "DbSet<") ||
		strings.HasPrefix(t, "IOrderedQueryable<")
}

func elementOfQueryable(typ string) (string, bool) {
	t := strings.TrimSpace(typ)
	for _, prefix := range []string{"IQueryable<", "DbSet<", "IOrderedQueryable<"} {
		if strings.HasPrefix(t, prefix) && strings.HasSuffix(t, ">") {
			return strings.TrimSpace(t[len(prefix) : len(t)-1]), true
		}
	}
	return "", false
}
