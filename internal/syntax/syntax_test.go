package syntax

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csTestSource = `using System;
using System.Linq;

public class Catalog
{
    public async Task<int> CountBig(int floor)
    {
        var query = items.Where(x => x.Value > floor);
        return query.Count();
    }
}
`

func parseTestFile(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(context.Background(), "test.cs", []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func lastOf(f *File, kind string) *sitter.Node {
	var found *sitter.Node
	Walk(f.Root(), func(n *sitter.Node) bool {
		if n.Type() == kind {
			found = n
		}
		return true
	})
	return found
}

func firstOf(f *File, kind string) *sitter.Node {
	var found *sitter.Node
	Walk(f.Root(), func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestParseProducesTree(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	require.NotNil(t, f.Root())
	assert.Equal(t, "compilation_unit", f.Root().Type())
	assert.False(t, f.Root().HasError())
}

func TestSpanContainsAndOverlaps(t *testing.T) {
	outer := Span{Start: 10, End: 50}
	assert.True(t, outer.Contains(Span{Start: 10, End: 50}))
	assert.True(t, outer.Contains(Span{Start: 20, End: 30}))
	assert.False(t, outer.Contains(Span{Start: 5, End: 30}))

	assert.True(t, outer.Overlaps(Span{Start: 40, End: 60}))
	assert.False(t, outer.Overlaps(Span{Start: 50, End: 60}))
	assert.False(t, outer.Overlaps(Span{Start: 0, End: 10}))
}

func TestPosition(t *testing.T) {
	f := parseTestFile(t, "abc\ndef\nghi")

	line, col := f.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)

	line, col = f.Position(4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	line, col = f.Position(10)
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)
}

func TestCalleeSplitsReceiverAndName(t *testing.T) {
	f := parseTestFile(t, csTestSource)

	inv := firstOf(f, KindInvocation)
	require.NotNil(t, inv)
	recv, name := Callee(inv)
	require.NotNil(t, recv)
	require.NotNil(t, name)
	assert.Equal(t, "items", f.Text(recv))
	assert.Equal(t, "Where", f.Text(name))
	assert.Equal(t, "Where", CalleeName(f, inv))
}

func TestCalleeNameStripsGenerics(t *testing.T) {
	f := parseTestFile(t, `public class C
{
    void M()
    {
        var x = items.OfType<Widget>();
    }
}
`)
	inv := firstOf(f, KindInvocation)
	require.NotNil(t, inv)
	assert.Equal(t, "OfType", CalleeName(f, inv))
}

func TestArgumentsReturnsExpressionNodes(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	inv := firstOf(f, KindInvocation)
	args := Arguments(inv)
	require.Len(t, args, 1)
	assert.Equal(t, KindLambda, args[0].Type())
}

func TestLambdaParamsAndBody(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	lambda := firstOf(f, KindLambda)
	require.NotNil(t, lambda)
	assert.Equal(t, []string{"x"}, LambdaParams(f, lambda))
	body := LambdaBody(lambda)
	require.NotNil(t, body)
	assert.Equal(t, "x.Value > floor", f.Text(body))
}

func TestLambdaParamsParenthesizedList(t *testing.T) {
	f := parseTestFile(t, `public class C
{
    void M()
    {
        var x = pairs.Select((a, b) => a);
    }
}
`)
	lambda := firstOf(f, KindLambda)
	require.NotNil(t, lambda)
	assert.Equal(t, []string{"a", "b"}, LambdaParams(f, lambda))
}

func TestHasModifier(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	method := firstOf(f, KindMethodDecl)
	require.NotNil(t, method)
	assert.True(t, HasModifier(f, method, "async"))
	assert.True(t, HasModifier(f, method, "public"))
	assert.False(t, HasModifier(f, method, "static"))
	assert.Equal(t, "CountBig", NameOf(f, method))
}

func TestEnclosingFunction(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	lambda := firstOf(f, KindLambda)
	fn := EnclosingFunction(lambda)
	require.NotNil(t, fn)
	assert.Equal(t, "CountBig", NameOf(f, fn))
}

func TestBinaryOperator(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	bin := firstOf(f, KindBinary)
	require.NotNil(t, bin)
	assert.Equal(t, ">", BinaryOperator(f, bin))
}

func TestInitializerOf(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	declarator := firstOf(f, KindVarDeclarator)
	require.NotNil(t, declarator)
	init := InitializerOf(declarator)
	require.NotNil(t, init)
	assert.Equal(t, KindInvocation, init.Type())
}

func TestInitializerOfObjectCreation(t *testing.T) {
	f := parseTestFile(t, `public class C
{
    void M()
    {
        var session = new ShopContext();
        int bare;
    }
}
`)
	declarator := firstOf(f, KindVarDeclarator)
	require.NotNil(t, declarator)
	init := InitializerOf(declarator)
	require.NotNil(t, init)
	assert.Equal(t, KindObjectCreation, init.Type())

	bare := lastOf(f, KindVarDeclarator)
	require.NotNil(t, bare)
	assert.Nil(t, InitializerOf(bare))
}

func TestStripParens(t *testing.T) {
	f := parseTestFile(t, `public class C
{
    void M()
    {
        var x = ((count));
    }
}
`)
	paren := firstOf(f, KindParenthesized)
	require.NotNil(t, paren)
	inner := StripParens(paren)
	require.NotNil(t, inner)
	assert.Equal(t, KindIdentifier, inner.Type())
	assert.Equal(t, "count", f.Text(inner))
}

func TestReferencesIdentifier(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	lambda := firstOf(f, KindLambda)

	assert.True(t, ReferencesIdentifier(f, lambda, "floor"))
	assert.True(t, ReferencesIdentifier(f, lambda, "x"))
	// Value only occurs as the member part of x.Value.
	assert.False(t, ReferencesIdentifier(f, lambda, "Value"))
}

func TestNodeForSpan(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	lambda := firstOf(f, KindLambda)
	found := f.NodeForSpan(NodeSpan(lambda))
	require.NotNil(t, found)
	assert.True(t, found.Equal(lambda))

	assert.Nil(t, f.NodeForSpan(Span{Start: 1, End: 2}))
}

func TestWalkSkipsSubtreeOnFalse(t *testing.T) {
	f := parseTestFile(t, csTestSource)
	sawLambda := false
	Walk(f.Root(), func(n *sitter.Node) bool {
		if n.Type() == KindLambda {
			sawLambda = true
		}
		return n.Type() != KindMethodDecl
	})
	assert.False(t, sawLambda)
}
