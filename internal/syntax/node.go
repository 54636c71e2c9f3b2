package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kind names from the tree-sitter C# grammar. Rules dispatch on these
// tags; keeping them in one place insulates the rest of the engine from
// grammar renames.
const (
	KindInvocation      = "invocation_expression"
	KindMemberAccess    = "member_access_expression"
	KindIdentifier      = "identifier"
	KindArgumentList    = "argument_list"
	KindArgument        = "argument"
	KindLambda          = "lambda_expression"
	KindClassDecl       = "class_declaration"
	KindMethodDecl      = "method_declaration"
	KindLocalFunction   = "local_function_statement"
	KindPropertyDecl    = "property_declaration"
	KindParameter       = "parameter"
	KindImplicitParam   = "implicit_parameter"
	KindParameterList   = "parameter_list"
	KindLocalDeclStmt   = "local_declaration_statement"
	KindVariableDecl    = "variable_declaration"
	KindVarDeclarator   = "variable_declarator"
	KindEqualsValue     = "equals_value_clause"
	KindUsingStatement  = "using_statement"
	KindReturnStatement = "return_statement"
	KindForStatement    = "for_statement"
	KindForeachStmt     = "foreach_statement"
	KindWhileStatement  = "while_statement"
	KindDoStatement     = "do_statement"
	KindConditional     = "conditional_expression"
	KindBinary          = "binary_expression"
	KindSwitchExpr      = "switch_expression"
	KindSwitchArm       = "switch_expression_arm"
	KindParenthesized   = "parenthesized_expression"
	KindObjectCreation  = "object_creation_expression"
	KindAssignment      = "assignment_expression"
	KindAttributeList   = "attribute_list"
	KindAttribute       = "attribute"
	KindBaseList        = "base_list"
	KindCast            = "cast_expression"
	KindAwait           = "await_expression"
	KindBlock           = "block"
	KindElementAccess   = "element_access_expression"
	KindGenericName     = "generic_name"
	KindIntegerLiteral  = "integer_literal"
)

var loopKinds = map[string]bool{
	KindForStatement:   true,
	KindForeachStmt:    true,
	KindWhileStatement: true,
	KindDoStatement:    true,
}

// IsLoop reports whether kind names a loop statement.
func IsLoop(kind string) bool { return loopKinds[kind] }

// Callee splits an invocation into its receiver expression and the invoked
// name node. For `a.b.Where(x)` the receiver is `a.b` and the name is
// `Where`; for a bare `Helper(x)` the receiver is nil.
func Callee(invocation *sitter.Node) (receiver, name *sitter.Node) {
	fn := invocation.ChildByFieldName("function")
	if fn == nil {
		return nil, nil
	}
	switch fn.Type() {
	case KindMemberAccess:
		return fn.ChildByFieldName("expression"), fn.ChildByFieldName("name")
	case KindIdentifier, KindGenericName:
		return nil, fn
	default:
		return nil, nil
	}
}

// CalleeName returns the invoked method name, stripped of any generic
// argument list ("Include<T>" → "Include").
func CalleeName(f *File, invocation *sitter.Node) string {
	_, name := Callee(invocation)
	if name == nil {
		return ""
	}
	text := f.Text(name)
	if i := strings.IndexByte(text, '<'); i >= 0 {
		text = text[:i]
	}
	return text
}

// Arguments returns the expression node of each argument in an invocation.
func Arguments(invocation *sitter.Node) []*sitter.Node {
	list := invocation.ChildByFieldName("arguments")
	if list == nil {
		return nil
	}
	var args []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		arg := list.NamedChild(i)
		if arg.Type() != KindArgument {
			continue
		}
		// The argument's expression is its last named child (skips ref/out
		// modifiers and name colons).
		if n := arg.NamedChild(int(arg.NamedChildCount()) - 1); n != nil {
			args = append(args, n)
		}
	}
	return args
}

// LambdaParams returns the parameter names of a lambda expression, handling
// the single-parameter form `x => ...` (an identifier or implicit_parameter
// node depending on grammar revision) and parenthesized lists.
func LambdaParams(f *File, lambda *sitter.Node) []string {
	var names []string
	params := lambda.ChildByFieldName("parameters")
	if params == nil {
		// Fall back to scanning named children before the body.
		body := LambdaBody(lambda)
		for i := 0; i < int(lambda.NamedChildCount()); i++ {
			c := lambda.NamedChild(i)
			if body != nil && c.StartByte() >= body.StartByte() {
				break
			}
			if c.Type() == KindIdentifier || c.Type() == KindImplicitParam || c.Type() == KindParameterList {
				params = c
				break
			}
		}
	}
	if params == nil {
		return nil
	}
	switch params.Type() {
	case KindIdentifier, KindImplicitParam:
		names = append(names, f.Text(params))
	default:
		Walk(params, func(n *sitter.Node) bool {
			switch n.Type() {
			case KindImplicitParam:
				names = append(names, f.Text(n))
				return false
			case KindParameter:
				if nm := n.ChildByFieldName("name"); nm != nil {
					names = append(names, f.Text(nm))
				} else if nm := lastChildOfKind(n, KindIdentifier); nm != nil {
					names = append(names, f.Text(nm))
				}
				return false
			}
			return true
		})
	}
	return names
}

// LambdaBody returns the body expression or block of a lambda.
func LambdaBody(lambda *sitter.Node) *sitter.Node {
	if body := lambda.ChildByFieldName("body"); body != nil {
		return body
	}
	if n := lambda.NamedChildCount(); n > 0 {
		return lambda.NamedChild(int(n) - 1)
	}
	return nil
}

// Modifiers returns the modifier keywords on a declaration (public, async,
// static, ...).
func Modifiers(f *File, decl *sitter.Node) []string {
	var mods []string
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		if c.Type() == "modifier" {
			mods = append(mods, f.Text(c))
		}
	}
	return mods
}

// HasModifier reports whether a declaration carries the given modifier.
func HasModifier(f *File, decl *sitter.Node, mod string) bool {
	for _, m := range Modifiers(f, decl) {
		if m == mod {
			return true
		}
	}
	return false
}

// NameOf returns the text of a declaration's name field.
func NameOf(f *File, decl *sitter.Node) string {
	if n := decl.ChildByFieldName("name"); n != nil {
		return f.Text(n)
	}
	return ""
}

// Ancestor walks up from n and returns the nearest ancestor whose kind is in
// kinds, or nil.
func Ancestor(n *sitter.Node, kinds ...string) *sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, k := range kinds {
			if p.Type() == k {
				return p
			}
		}
	}
	return nil
}

// EnclosingFunction returns the nearest enclosing method or local function
// declaration.
func EnclosingFunction(n *sitter.Node) *sitter.Node {
	return Ancestor(n, KindMethodDecl, KindLocalFunction)
}

// EnclosingStatement returns the nearest ancestor (or n itself) whose parent
// is a block, i.e. the statement containing n.
func EnclosingStatement(n *sitter.Node) *sitter.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if p := cur.Parent(); p != nil && p.Type() == KindBlock {
			return cur
		}
	}
	return nil
}

// BinaryOperator returns the operator token text of a binary expression,
// e.g. ">", "==", "??".
func BinaryOperator(f *File, bin *sitter.Node) string {
	if op := bin.ChildByFieldName("operator"); op != nil {
		return f.Text(op)
	}
	// Grammar variants without an operator field: the token sits between the
	// two operands.
	left := bin.ChildByFieldName("left")
	right := bin.ChildByFieldName("right")
	if left == nil || right == nil {
		return ""
	}
	return strings.TrimSpace(string(f.Src[left.EndByte():right.StartByte()]))
}

// InitializerOf returns the initializer expression of a variable declarator,
// or nil when the declaration has none. The grammar has shipped both shapes:
// an equals_value_clause wrapper and the initializer nested directly after
// the declarator's name.
func InitializerOf(declarator *sitter.Node) *sitter.Node {
	for i := 0; i < int(declarator.NamedChildCount()); i++ {
		c := declarator.NamedChild(i)
		if c.Type() == KindEqualsValue {
			return c.NamedChild(int(c.NamedChildCount()) - 1)
		}
	}
	if n := declarator.NamedChildCount(); n > 1 {
		return declarator.NamedChild(int(n) - 1)
	}
	return nil
}

// StripParens unwraps parenthesized expressions.
func StripParens(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == KindParenthesized {
		n = n.NamedChild(0)
	}
	return n
}

// ReferencesIdentifier reports whether the subtree at n contains an
// identifier with the given text that is not the name part of a member
// access (so `x.Name` references x but `other.x` does not reference x).
func ReferencesIdentifier(f *File, n *sitter.Node, ident string) bool {
	found := false
	Walk(n, func(c *sitter.Node) bool {
		if found {
			return false
		}
		if c.Type() == KindIdentifier && f.Text(c) == ident {
			if p := c.Parent(); p != nil && p.Type() == KindMemberAccess {
				if nameField := p.ChildByFieldName("name"); nameField != nil && nameField.Equal(c) {
					return false
				}
			}
			found = true
			return false
		}
		return true
	})
	return found
}

func lastChildOfKind(n *sitter.Node, kind string) *sitter.Node {
	var last *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == kind {
			last = c
		}
	}
	return last
}
