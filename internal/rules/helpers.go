package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// predicateOps take a translated expression argument: filters, projections,
// and ordering key selectors.
var predicateOps = func() map[string]bool {
	m := map[string]bool{}
	for _, s := range []map[string]bool{
		semantic.FilterOps, semantic.ProjectOps,
		semantic.PrimaryOrderOps, semantic.SecondaryOrderOps,
	} {
		for k := range s {
			m[k] = true
		}
	}
	return m
}()

// entityMaterializers are the materializing operators that yield entity
// instances (rather than scalar aggregates).
var entityMaterializers = map[string]bool{
	"ToList": true, "ToArray": true, "ToHashSet": true,
	"First": true, "FirstOrDefault": true, "Single": true,
	"SingleOrDefault": true, "Last": true, "LastOrDefault": true,
	"ToListAsync": true, "ToArrayAsync": true, "ToHashSetAsync": true,
	"FirstAsync": true, "FirstOrDefaultAsync": true, "SingleAsync": true,
	"SingleOrDefaultAsync": true,
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// rootIdentifier returns the leftmost identifier of a (possibly chained)
// member access or invocation expression, or nil.
func rootIdentifier(expr *sitter.Node) *sitter.Node {
	for expr != nil {
		expr = syntax.StripParens(expr)
		if expr == nil {
			return nil
		}
		switch expr.Type() {
		case syntax.KindIdentifier:
			return expr
		case syntax.KindMemberAccess:
			expr = expr.ChildByFieldName("expression")
		case syntax.KindInvocation:
			expr = expr.ChildByFieldName("function")
		case syntax.KindElementAccess:
			expr = expr.ChildByFieldName("expression")
		default:
			return nil
		}
	}
	return nil
}

// loopVariables collects the iteration variables of every loop enclosing n.
func loopVariables(f *syntax.File, n *sitter.Node) []string {
	var vars []string
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case syntax.KindForeachStmt:
			if left := p.ChildByFieldName("left"); left != nil && left.Type() == syntax.KindIdentifier {
				vars = append(vars, f.Text(left))
			}
		case syntax.KindForStatement:
			if init := p.ChildByFieldName("initializer"); init != nil {
				syntax.Walk(init, func(c *sitter.Node) bool {
					if c.Type() == syntax.KindVarDeclarator {
						if nm := syntax.NameOf(f, c); nm != "" {
							vars = append(vars, nm)
						}
						return false
					}
					return true
				})
			}
		}
	}
	return vars
}

// insideLoop reports whether n sits lexically inside a loop body.
func insideLoop(n *sitter.Node) bool {
	return syntax.Ancestor(n,
		syntax.KindForStatement, syntax.KindForeachStmt,
		syntax.KindWhileStatement, syntax.KindDoStatement) != nil
}

// stringLiteralValue unquotes a string literal node, or returns "" if n is
// not one.
func stringLiteralValue(f *syntax.File, n *sitter.Node) string {
	if n == nil || n.Type() != "string_literal" {
		return ""
	}
	text := f.Text(n)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return ""
}
