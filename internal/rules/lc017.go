package rules

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC017 flags over-fetching: a sequence of full entity instances of a large
// entity is materialized without a narrowing projection, and the rest of the
// scope only ever touches a strict subset of the members. "Large" is a
// configurable member-count threshold.
type LC017 struct{}

func (LC017) ID() string         { return "LC017" }
func (LC017) Severity() Severity { return SeverityInfo }
func (LC017) Kinds() []string    { return []string{syntax.KindMethodDecl, syntax.KindLocalFunction} }

func (r *LC017) Check(rc *Context, method *sitter.Node) []Finding {
	body := method.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	f := rc.File

	var findings []Finding
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != syntax.KindVarDeclarator {
			return true
		}
		local := syntax.NameOf(f, n)
		if local == "" {
			if id := n.NamedChild(0); id != nil && id.Type() == syntax.KindIdentifier {
				local = f.Text(id)
			}
		}
		init := syntax.StripParens(syntax.InitializerOf(n))
		if init != nil && init.Type() == syntax.KindAwait {
			init = syntax.StripParens(init.NamedChild(0))
		}
		if local == "" || init == nil || init.Type() != syntax.KindInvocation {
			return true
		}

		chain := Reconstruct(f, init)
		if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
			return true
		}
		if chain.HasOp(semantic.ProjectOps) {
			return true // already narrowed
		}
		var conv *ChainOp
		for i := range chain.Ops {
			if semantic.SequenceConversionOps[chain.Ops[i].Name] ||
				chain.Ops[i].Name == "ToListAsync" || chain.Ops[i].Name == "ToArrayAsync" {
				conv = &chain.Ops[i]
				break
			}
		}
		if conv == nil {
			return true
		}
		entity, ok := rc.ChainEntity(chain)
		if !ok {
			return true
		}
		members, ok := rc.Sem.DeclaredMembers(entity)
		if !ok {
			return true
		}
		total := 0
		names := map[string]bool{}
		for _, m := range members {
			if m.Kind == "property" || m.Kind == "field" {
				total++
				names[m.Name] = true
			}
		}
		if total <= rc.LargeEntityMembers {
			return true
		}

		touched := r.touchedMembers(rc, body, local, names)
		if len(touched) == 0 || len(touched) >= total {
			return true
		}
		findings = append(findings, rc.finding(r, conv.Span(),
			conv.Name, entity, strconv.Itoa(total), strconv.Itoa(len(touched))))
		return true
	})
	return findings
}

// touchedMembers collects the entity members the scope accesses through the
// materialized local: element accesses and iteration variables of loops over
// it.
func (r *LC017) touchedMembers(rc *Context, body *sitter.Node, local string, members map[string]bool) map[string]bool {
	f := rc.File
	aliases := map[string]bool{local: true}
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != syntax.KindForeachStmt {
			return true
		}
		right := n.ChildByFieldName("right")
		left := n.ChildByFieldName("left")
		if right == nil || left == nil || left.Type() != syntax.KindIdentifier {
			return true
		}
		if id := rootIdentifier(right); id != nil && f.Text(id) == local {
			aliases[f.Text(left)] = true
		}
		return true
	})

	touched := map[string]bool{}
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != syntax.KindMemberAccess {
			return true
		}
		name := n.ChildByFieldName("name")
		expr := n.ChildByFieldName("expression")
		if name == nil || expr == nil {
			return true
		}
		memberName := f.Text(name)
		if !members[memberName] {
			return true
		}
		if id := rootIdentifier(expr); id != nil && aliases[f.Text(id)] {
			touched[memberName] = true
		}
		return true
	})
	return touched
}
