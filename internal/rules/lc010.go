package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC010 flags a persistence-commit call inside a loop body: N commits where
// one batched commit after the loop suffices. The receiver must be
// assignable to the session type; inherited commit calls inside a session
// subclass count too.
type LC010 struct{}

func (LC010) ID() string         { return "LC010" }
func (LC010) Severity() Severity { return SeverityWarning }
func (LC010) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC010) Check(rc *Context, n *sitter.Node) []Finding {
	name := syntax.CalleeName(rc.File, n)
	if !semantic.CommitOps[name] || !insideLoop(n) {
		return nil
	}
	recv, _ := syntax.Callee(n)
	if !r.onSession(rc, n, recv) {
		return nil
	}
	return []Finding{rc.finding(r, syntax.NodeSpan(n), name)}
}

func (r *LC010) onSession(rc *Context, n, recv *sitter.Node) bool {
	if recv == nil {
		// Bare or inherited call: counts when the enclosing class is itself
		// a session subclass.
		cls := syntax.Ancestor(n, syntax.KindClassDecl)
		return cls != nil && rc.Sem.IsContextType(syntax.NameOf(rc.File, cls))
	}
	return rc.Sem.IsSessionValue(recv)
}
