package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/syntax"
)

// LC011 is the design-time model check: every entity type reachable from a
// session's mapped collections must resolve an identity key via naming
// convention, key annotation, or explicit configuration. Without one the
// session cannot track, update, or delete instances.
type LC011 struct{}

func (LC011) ID() string         { return "LC011" }
func (LC011) Severity() Severity { return SeverityWarning }
func (LC011) Kinds() []string    { return []string{syntax.KindClassDecl} }

func (r *LC011) Check(rc *Context, n *sitter.Node) []Finding {
	name := syntax.NameOf(rc.File, n)
	if name == "" || !rc.Sem.IsContextType(name) {
		return nil
	}

	var findings []Finding
	for _, set := range rc.Sem.DbSets() {
		if set.Context != name {
			continue
		}
		entity, ok := rc.Sem.LookupType(set.Element)
		if !ok {
			continue // declared elsewhere; nothing to check here
		}
		if rc.Sem.HasIdentityKey(set.Element) {
			continue
		}
		fd := rc.finding(r, syntax.NodeSpan(entity.Node), set.Element, set.Prop)
		if set.Node != nil {
			fd.RelatedSpans = []syntax.Span{syntax.NodeSpan(set.Node)}
		}
		findings = append(findings, fd)
	}
	return findings
}
