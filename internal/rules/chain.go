package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// ChainOp is one operator application within a reconstructed query chain.
type ChainOp struct {
	Name     string
	NameNode *sitter.Node
	Node     *sitter.Node // the invocation applying this operator
	Args     []*sitter.Node
}

// Span covers the operator name through the closing parenthesis, excluding
// the receiver: for `q.Where(p)` it covers `Where(p)`.
func (op ChainOp) Span() syntax.Span {
	return syntax.Span{Start: op.NameNode.StartByte(), End: op.Node.EndByte()}
}

// DotStart is the byte offset of the '.' preceding the operator name, where
// fix generators splice new operators in.
func (op ChainOp) DotStart() uint32 {
	if op.NameNode.StartByte() > 0 {
		return op.NameNode.StartByte() - 1
	}
	return op.NameNode.StartByte()
}

// Chain is the logical view of one fluent call sequence. Ops are in source
// (left-to-right) evaluation order; Root is the expression the first
// operator was applied to.
type Chain struct {
	Root *sitter.Node
	Ops  []ChainOp
}

// Reconstruct builds the chain ending at the given invocation by walking
// nested invocations innermost-first and reversing. Ephemeral; rebuilt per
// examined root expression.
func Reconstruct(f *syntax.File, invocation *sitter.Node) *Chain {
	var ops []ChainOp
	cur := invocation
	for cur != nil && cur.Type() == syntax.KindInvocation {
		recv, name := syntax.Callee(cur)
		if name == nil {
			break
		}
		ops = append(ops, ChainOp{
			Name:     syntax.CalleeName(f, cur),
			NameNode: name,
			Node:     cur,
			Args:     syntax.Arguments(cur),
		})
		if recv == nil {
			// Bare call: the invocation itself is the chain root.
			cur = nil
			break
		}
		cur = syntax.StripParens(recv)
	}
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return &Chain{Root: cur, Ops: ops}
}

// IsOutermost reports whether an invocation is not itself the receiver of a
// further chained member access. Rules that examine whole chains evaluate
// only at the outermost invocation so each chain is examined once.
func IsOutermost(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return true
	}
	if p.Type() == syntax.KindParenthesized {
		return IsOutermost(p)
	}
	if p.Type() != syntax.KindMemberAccess {
		return true
	}
	expr := p.ChildByFieldName("expression")
	if expr == nil || !expr.Equal(n) {
		return true
	}
	gp := p.Parent()
	return gp == nil || gp.Type() != syntax.KindInvocation
}

// FirstIndex returns the index of the first op whose name is in the set, or
// -1.
func (c *Chain) FirstIndex(names map[string]bool) int {
	for i, op := range c.Ops {
		if names[op.Name] {
			return i
		}
	}
	return -1
}

// Boundary returns the index of the first in-memory switch operator.
// Operators at or beyond the boundary evaluate on the client, not at the
// store. Returns len(Ops) when the whole chain is store-evaluated.
func (c *Chain) Boundary() int {
	for i, op := range c.Ops {
		if semantic.InMemorySwitchOps[op.Name] {
			return i
		}
	}
	return len(c.Ops)
}

// IsDeferred reports whether the chain has not yet forced evaluation.
func (c *Chain) IsDeferred() bool {
	for _, op := range c.Ops {
		if semantic.MaterializingOps[op.Name] || semantic.AsyncMaterializingOps[op.Name] {
			return false
		}
	}
	return true
}

// HasOp reports whether any operator name in the set occurs in the chain.
func (c *Chain) HasOp(names map[string]bool) bool {
	return c.FirstIndex(names) >= 0
}
