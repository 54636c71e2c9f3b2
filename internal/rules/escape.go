package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/syntax"
)

// CollectTerminals returns the terminal value-producing leaves of an
// expression, descending through conditional, null-coalescing, and switch
// expressions (plus parentheses, casts, and awaits) to arbitrary nesting
// depth. A plain expression is its own single terminal.
func CollectTerminals(f *syntax.File, expr *sitter.Node) []*sitter.Node {
	var terminals []*sitter.Node
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case syntax.KindParenthesized:
			collect(syntax.StripParens(n))
		case syntax.KindCast:
			if v := n.ChildByFieldName("value"); v != nil {
				collect(v)
			}
		case syntax.KindAwait:
			if v := n.NamedChild(0); v != nil {
				collect(v)
			}
		case syntax.KindConditional:
			collect(n.ChildByFieldName("consequence"))
			collect(n.ChildByFieldName("alternative"))
		case syntax.KindBinary:
			if syntax.BinaryOperator(f, n) == "??" {
				collect(n.ChildByFieldName("left"))
				collect(n.ChildByFieldName("right"))
			} else {
				terminals = append(terminals, n)
			}
		case syntax.KindSwitchExpr:
			for i := 0; i < int(n.NamedChildCount()); i++ {
				arm := n.NamedChild(i)
				if arm.Type() != syntax.KindSwitchArm {
					continue
				}
				// The arm's result is its last named child, after the pattern
				// and any guard.
				if result := arm.NamedChild(int(arm.NamedChildCount()) - 1); result != nil {
					collect(result)
				}
			}
		default:
			terminals = append(terminals, n)
		}
	}
	collect(expr)
	return terminals
}
