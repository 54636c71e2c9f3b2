package fixer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/rules"
	"github.com/jward/linqcheck/internal/syntax"
)

// Generator produces the edits fixing one finding, or reports that no fix
// applies. Generators never emit edits that would produce invalid code; a
// failed precondition is "no fix".
type Generator func(rc *rules.Context, fd rules.Finding) ([]Edit, bool)

var generators = map[string]Generator{
	"LC001": fixLC001,
	"LC004": fixLC004,
	"LC015": fixLC015,
}

// Has reports whether the rule identifier has a fix generator.
func Has(ruleID string) bool {
	_, ok := generators[ruleID]
	return ok
}

// For returns the generator for a rule identifier.
func For(ruleID string) (Generator, bool) {
	g, ok := generators[ruleID]
	return g, ok
}

// fixLC001 offers two candidate rewrites for a program-defined call inside a
// translated closure: hoist the call's result into a binding before the
// statement when the call does not depend on the closure's parameter, else
// switch the chain to in-memory evaluation immediately before the operator
// whose closure contains the call.
func fixLC001(rc *rules.Context, fd rules.Finding) ([]Edit, bool) {
	f := rc.File
	call := f.NodeForSpan(fd.PrimarySpan)
	if call == nil || call.Type() != syntax.KindInvocation {
		return nil, false
	}
	lambda := syntax.Ancestor(call, syntax.KindLambda)
	if lambda == nil {
		return nil, false
	}

	captured := false
	for _, p := range syntax.LambdaParams(f, lambda) {
		if syntax.ReferencesIdentifier(f, call, p) {
			captured = true
			break
		}
	}
	if !captured {
		return hoistBeforeStatement(f, call, bindingNameFor(fd.MessageArgs, "Result"))
	}

	// The extraction would capture the closure's own parameter; fall back to
	// an in-memory switch before the operator. Its name span was recorded as
	// the first related span.
	if len(fd.RelatedSpans) == 0 || fd.RelatedSpans[0].Start == 0 {
		return nil, false
	}
	dot := fd.RelatedSpans[0].Start - 1
	if dot >= uint32(len(f.Src)) || f.Src[dot] != '.' {
		return nil, false
	}
	return []Edit{{Span: syntax.Span{Start: dot, End: dot}, Replacement: ".AsEnumerable()"}}, true
}

// fixLC004 hoists a non-deterministic construction into a binding declared
// immediately before the statement containing the chain and replaces the
// in-closure occurrence with the binding.
func fixLC004(rc *rules.Context, fd rules.Finding) ([]Edit, bool) {
	f := rc.File
	node := f.NodeForSpan(fd.PrimarySpan)
	if node == nil {
		return nil, false
	}
	return hoistBeforeStatement(f, node, nondetBindingName(f.SpanText(fd.PrimarySpan)))
}

// fixLC015 inserts an explicit ordering operator immediately before the
// flagged positional operator, keyed by the entity's annotated or
// conventional identity member. No resolvable key means no fix.
func fixLC015(rc *rules.Context, fd rules.Finding) ([]Edit, bool) {
	f := rc.File
	invocation := invocationForOpSpan(f, fd.PrimarySpan)
	if invocation == nil {
		return nil, false
	}
	chain := rules.Reconstruct(f, invocation)
	entity, ok := rc.ChainEntity(chain)
	if !ok {
		return nil, false
	}
	key, ok := rc.Sem.KeyMember(entity)
	if !ok {
		return nil, false
	}
	op, ok := chainOpAt(chain, fd.PrimarySpan)
	if !ok {
		return nil, false
	}
	dot := op.DotStart()
	if dot == fd.PrimarySpan.Start || f.Src[dot] != '.' {
		return nil, false
	}
	return []Edit{{
		Span:        syntax.Span{Start: dot, End: dot},
		Replacement: ".OrderBy(x => x." + key + ")",
	}}, true
}

// hoistBeforeStatement extracts node into `var <name> = <node>;` before the
// enclosing statement and replaces the occurrence with the binding name.
func hoistBeforeStatement(f *syntax.File, node *sitter.Node, name string) ([]Edit, bool) {
	stmt := syntax.EnclosingStatement(node)
	if stmt == nil {
		return nil, false
	}
	indent := indentAt(f.Src, stmt.StartByte())
	decl := "var " + name + " = " + f.Text(node) + ";\n" + indent
	return []Edit{
		{Span: syntax.Span{Start: stmt.StartByte(), End: stmt.StartByte()}, Replacement: decl},
		{Span: syntax.NodeSpan(node), Replacement: name},
	}, true
}

// chainOpAt finds the chain operator whose span was recorded in a finding.
func chainOpAt(chain *rules.Chain, span syntax.Span) (rules.ChainOp, bool) {
	for _, op := range chain.Ops {
		if op.Span() == span {
			return op, true
		}
	}
	return rules.ChainOp{}, false
}

// invocationForOpSpan finds the invocation whose operator span was recorded
// in a finding: the smallest invocation ending where the span ends and
// starting at or before it.
func invocationForOpSpan(f *syntax.File, span syntax.Span) *sitter.Node {
	var found *sitter.Node
	syntax.Walk(f.Root(), func(n *sitter.Node) bool {
		ns := syntax.NodeSpan(n)
		if ns.End < span.End || ns.Start > span.Start {
			return ns.Contains(span)
		}
		if n.Type() == syntax.KindInvocation && ns.End == span.End {
			found = n
		}
		return true
	})
	return found
}

// bindingNameFor derives a binding name from a finding's first message
// argument (the offending method's name).
func bindingNameFor(args []string, suffix string) string {
	if len(args) == 0 || args[0] == "" {
		return "hoisted" + suffix
	}
	name := args[0]
	return strings.ToLower(name[:1]) + name[1:] + suffix
}

func nondetBindingName(text string) string {
	switch {
	case strings.HasPrefix(text, "Guid.NewGuid"):
		return "newId"
	case text == "DateTime.Now" || text == "DateTimeOffset.Now":
		return "now"
	case text == "DateTime.UtcNow" || text == "DateTimeOffset.UtcNow":
		return "utcNow"
	case text == "DateTime.Today":
		return "today"
	case strings.HasPrefix(text, "new Random"):
		return "random"
	default:
		return "hoisted"
	}
}
