package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC003 flags a count operator on a store-rooted chain compared to zero.
// Counting forces a full scan where an existence operator suffices.
type LC003 struct{}

func (LC003) ID() string         { return "LC003" }
func (LC003) Severity() Severity { return SeverityInfo }
func (LC003) Kinds() []string    { return []string{syntax.KindBinary} }

func (r *LC003) Check(rc *Context, n *sitter.Node) []Finding {
	f := rc.File
	op := syntax.BinaryOperator(f, n)
	left := syntax.StripParens(n.ChildByFieldName("left"))
	right := syntax.StripParens(n.ChildByFieldName("right"))
	if left == nil || right == nil {
		return nil
	}

	countName, ok := r.countCall(rc, left)
	if ok && r.existenceComparison(f, op, right, false) {
		return []Finding{rc.finding(r, syntax.NodeSpan(n), countName)}
	}
	countName, ok = r.countCall(rc, right)
	if ok && r.existenceComparison(f, op, left, true) {
		return []Finding{rc.finding(r, syntax.NodeSpan(n), countName)}
	}
	return nil
}

// countCall matches `<store chain>.Count()` / `.LongCount()`.
func (r *LC003) countCall(rc *Context, n *sitter.Node) (string, bool) {
	if n.Type() != syntax.KindInvocation {
		return "", false
	}
	name := syntax.CalleeName(rc.File, n)
	if !semantic.CountOps[name] {
		return "", false
	}
	if !rc.IsStoreRooted(n) {
		return "", false
	}
	return name, true
}

// existenceComparison matches the shapes that answer "is there anything":
// count > 0, count == 0, count != 0, count < 1, and their mirrored forms
// when the literal is on the left.
func (r *LC003) existenceComparison(f *syntax.File, op string, literal *sitter.Node, mirrored bool) bool {
	if literal.Type() != syntax.KindIntegerLiteral {
		return false
	}
	lit := f.Text(literal)
	if mirrored {
		switch {
		case lit == "0" && (op == "<" || op == "==" || op == "!="):
			return true
		case lit == "1" && op == ">":
			return true
		}
		return false
	}
	switch {
	case lit == "0" && (op == ">" || op == "==" || op == "!="):
		return true
	case lit == "1" && op == "<":
		return true
	}
	return false
}
