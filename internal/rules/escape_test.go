package rules

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/linqcheck/internal/syntax"
)

// returnExpr parses a method whose body is `return <expr>;` and yields the
// returned expression node.
func returnExpr(t *testing.T, expr string) (*syntax.File, *sitter.Node) {
	t.Helper()
	src := []byte(`public class C
{
    public object M(bool a, bool b, int k)
    {
        return ` + expr + `;
    }
}
`)
	f, err := syntax.Parse(context.Background(), "escape.cs", src)
	require.NoError(t, err)
	t.Cleanup(f.Close)

	var ret *sitter.Node
	syntax.Walk(f.Root(), func(n *sitter.Node) bool {
		if n.Type() == syntax.KindReturnStatement {
			ret = n
			return false
		}
		return true
	})
	require.NotNil(t, ret)
	return f, ret.NamedChild(int(ret.NamedChildCount()) - 1)
}

func terminalTexts(f *syntax.File, nodes []*sitter.Node) []string {
	var texts []string
	for _, n := range nodes {
		texts = append(texts, f.Text(n))
	}
	return texts
}

func TestCollectTerminalsPlainExpression(t *testing.T) {
	f, expr := returnExpr(t, `x.Query()`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"x.Query()"}, terminalTexts(f, got))
}

func TestCollectTerminalsConditional(t *testing.T) {
	f, expr := returnExpr(t, `a ? one : two`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"one", "two"}, terminalTexts(f, got))
}

func TestCollectTerminalsNestedConditional(t *testing.T) {
	f, expr := returnExpr(t, `a ? one : b ? two : three`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"one", "two", "three"}, terminalTexts(f, got))
}

func TestCollectTerminalsNullCoalescing(t *testing.T) {
	f, expr := returnExpr(t, `primary ?? fallback`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"primary", "fallback"}, terminalTexts(f, got))
}

func TestCollectTerminalsSwitchExpression(t *testing.T) {
	f, expr := returnExpr(t, `k switch { 1 => one, 2 => two, _ => three }`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"one", "two", "three"}, terminalTexts(f, got))
}

func TestCollectTerminalsMixedNesting(t *testing.T) {
	f, expr := returnExpr(t, `a ? (primary ?? fallback) : b ? one : two`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"primary", "fallback", "one", "two"}, terminalTexts(f, got))
}

func TestCollectTerminalsDescendsThroughAwaitAndParens(t *testing.T) {
	f, expr := returnExpr(t, `((a ? one : two))`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"one", "two"}, terminalTexts(f, got))
}

func TestCollectTerminalsKeepsOtherBinariesWhole(t *testing.T) {
	f, expr := returnExpr(t, `left + right`)
	got := CollectTerminals(f, expr)
	assert.Equal(t, []string{"left + right"}, terminalTexts(f, got))
}
