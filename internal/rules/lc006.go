package rules

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC006 flags two or more eager-load directives for independent
// collection-valued relations on one query without a split-query directive.
// The single generated query transfers the cross product of related rows.
type LC006 struct{}

func (LC006) ID() string         { return "LC006" }
func (LC006) Severity() Severity { return SeverityWarning }
func (LC006) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC006) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || !rc.IsStoreRooted(chain.Root) {
		return nil
	}
	if chain.HasOp(semantic.SplitQueryOps) {
		return nil
	}
	entity, ok := rc.ChainEntity(chain)
	if !ok {
		return nil
	}
	members, ok := rc.Sem.DeclaredMembers(entity)
	if !ok {
		return nil
	}
	collections := map[string]bool{}
	for _, m := range members {
		if m.Collection {
			collections[m.Name] = true
		}
	}

	seen := map[string]bool{}
	var last ChainOp
	for _, op := range chain.Ops {
		if !semantic.EagerLoadOps[op.Name] || len(op.Args) == 0 {
			continue
		}
		nav, ok := r.navigationName(rc.File, op.Args[0])
		if !ok || !collections[nav] {
			continue
		}
		if !seen[nav] {
			seen[nav] = true
			last = op
		}
	}
	if len(seen) < 2 {
		return nil
	}
	return []Finding{rc.finding(r, last.Span(), strconv.Itoa(len(seen)))}
}

// navigationName extracts the navigated member from an Include argument:
// either a selector lambda `x => x.Orders` or a string path "Orders".
func (r *LC006) navigationName(f *syntax.File, arg *sitter.Node) (string, bool) {
	if s := stringLiteralValue(f, arg); s != "" {
		return s, true
	}
	if arg.Type() != syntax.KindLambda {
		return "", false
	}
	body := syntax.StripParens(syntax.LambdaBody(arg))
	if body == nil || body.Type() != syntax.KindMemberAccess {
		return "", false
	}
	if name := body.ChildByFieldName("name"); name != nil {
		return f.Text(name), true
	}
	return "", false
}
