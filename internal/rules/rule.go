// Package rules implements the detection engine: the rule catalogue, the
// per-kind dispatch registry, and the single-pass driver that walks one
// file's syntax tree and collects findings.
package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// Severity of a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "info"
}

// Finding is one diagnostic produced by a rule. It is created once and never
// mutated; the primary span always lies within the analyzed file.
type Finding struct {
	RuleID       string
	Severity     Severity
	PrimarySpan  syntax.Span
	MessageArgs  []string
	RelatedSpans []syntax.Span
}

// Message renders the catalogue template with the finding's positional
// arguments.
func (f Finding) Message() string {
	info, ok := Catalog[f.RuleID]
	if !ok {
		return f.RuleID
	}
	args := make([]any, len(f.MessageArgs))
	for i, a := range f.MessageArgs {
		args[i] = a
	}
	return fmt.Sprintf(info.Template, args...)
}

// Rule is a stateless detector. Check is invoked once per visited node whose
// kind appears in Kinds; it returns zero or more findings and must degrade to
// none when the semantic model cannot resolve what it needs.
type Rule interface {
	ID() string
	Severity() Severity
	Kinds() []string
	Check(rc *Context, n *sitter.Node) []Finding
}

// Context is the read-only state shared by all rule invocations within one
// driver pass over a single file.
type Context struct {
	File  *syntax.File
	Sem   *semantic.Model
	Facts *Facts

	// LargeEntityMembers is the LC017 threshold: entities with more declared
	// members than this are "large".
	LargeEntityMembers int
}

// NewContext builds the pass context for one parsed file.
func NewContext(f *syntax.File, sem *semantic.Model, largeEntityMembers int) *Context {
	if largeEntityMembers <= 0 {
		largeEntityMembers = DefaultLargeEntityMembers
	}
	return &Context{
		File:               f,
		Sem:                sem,
		Facts:              NewFacts(),
		LargeEntityMembers: largeEntityMembers,
	}
}

// DefaultLargeEntityMembers is the default LC017 threshold.
const DefaultLargeEntityMembers = 10

func (rc *Context) finding(rule Rule, span syntax.Span, args ...string) Finding {
	return Finding{
		RuleID:      rule.ID(),
		Severity:    rule.Severity(),
		PrimarySpan: span,
		MessageArgs: args,
	}
}
