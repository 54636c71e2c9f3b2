package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/syntax"
)

// LC013 flags a function that creates a session inside a scoped acquisition
// block and returns, through any reachable path, a still-deferred query
// sourced from that session. The session is released before the caller
// enumerates; enumeration then fails. Sessions supplied as parameters are
// externally owned and exempt.
type LC013 struct{}

func (LC013) ID() string         { return "LC013" }
func (LC013) Severity() Severity { return SeverityWarning }
func (LC013) Kinds() []string    { return []string{syntax.KindMethodDecl, syntax.KindLocalFunction} }

// scopedSession is one session created under a scoped acquisition, together
// with the byte range its scope covers.
type scopedSession struct {
	name string
	span syntax.Span
}

func (r *LC013) Check(rc *Context, method *sitter.Node) []Finding {
	body := method.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	sessions := r.scopedSessions(rc, body)
	if len(sessions) == 0 {
		return nil
	}

	var findings []Finding
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() == syntax.KindLocalFunction && !n.Equal(method) {
			return false
		}
		if n.Type() != syntax.KindReturnStatement || n.NamedChildCount() == 0 {
			return true
		}
		ret := syntax.NodeSpan(n)
		names := map[string]bool{}
		var owner string
		for _, s := range sessions {
			if s.span.Contains(ret) {
				names[s.name] = true
				owner = s.name
			}
		}
		if len(names) == 0 {
			return true
		}
		expr := n.NamedChild(int(n.NamedChildCount()) - 1)
		for _, terminal := range CollectTerminals(rc.File, expr) {
			if r.escapingQuery(rc, terminal, names) {
				findings = append(findings, rc.finding(r, syntax.NodeSpan(terminal), owner))
			}
		}
		return true
	})
	return findings
}

// scopedSessions finds sessions created by `using` statements and `using`
// declarations in the method body, with the scope each one covers.
func (r *LC013) scopedSessions(rc *Context, body *sitter.Node) []scopedSession {
	var sessions []scopedSession
	syntax.Walk(body, func(n *sitter.Node) bool {
		switch n.Type() {
		case syntax.KindUsingStatement:
			name, ok := r.sessionDeclared(rc, n)
			if !ok {
				return true
			}
			scope := n.ChildByFieldName("body")
			if scope == nil {
				scope = n
			}
			sessions = append(sessions, scopedSession{name: name, span: syntax.NodeSpan(scope)})
		case syntax.KindLocalDeclStmt:
			if !hasUsingKeyword(n) {
				return true
			}
			name, ok := r.sessionDeclared(rc, n)
			if !ok {
				return true
			}
			// A using declaration's scope runs to the end of the enclosing
			// block.
			block := syntax.Ancestor(n, syntax.KindBlock)
			if block == nil {
				block = body
			}
			sessions = append(sessions, scopedSession{
				name: name,
				span: syntax.Span{Start: n.EndByte(), End: block.EndByte()},
			})
		}
		return true
	})
	return sessions
}

// sessionDeclared extracts the variable name when the node declares a local
// initialized with a new session instance.
func (r *LC013) sessionDeclared(rc *Context, n *sitter.Node) (string, bool) {
	f := rc.File
	var name string
	syntax.Walk(n, func(c *sitter.Node) bool {
		if name != "" || c.Type() != syntax.KindVarDeclarator {
			return name == ""
		}
		init := syntax.StripParens(syntax.InitializerOf(c))
		if init == nil || init.Type() != syntax.KindObjectCreation {
			return true
		}
		t := init.ChildByFieldName("type")
		if t == nil || !rc.Sem.IsContextType(f.Text(t)) {
			return true
		}
		if nm := syntax.NameOf(f, c); nm != "" {
			name = nm
		} else if id := c.NamedChild(0); id != nil && id.Type() == syntax.KindIdentifier {
			name = f.Text(id)
		}
		return true
	})
	return name, name != ""
}

// escapingQuery reports whether a terminal is a still-deferred store query
// sourced from one of the scope's sessions.
func (r *LC013) escapingQuery(rc *Context, terminal *sitter.Node, sessions map[string]bool) bool {
	terminal = syntax.StripParens(terminal)
	if terminal == nil {
		return false
	}
	switch terminal.Type() {
	case syntax.KindInvocation:
		if !Reconstruct(rc.File, terminal).IsDeferred() {
			return false // already materialized
		}
	case syntax.KindMemberAccess, syntax.KindIdentifier:
		// Deferredness of locals is checked by the store-rooted chase.
	default:
		return false
	}
	return rc.IsStoreRooted(terminal) && rc.SessionSourced(terminal, sessions, 0)
}

func hasUsingKeyword(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "using" {
			return true
		}
	}
	return false
}
