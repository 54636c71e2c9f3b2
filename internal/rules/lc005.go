package rules

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// LC005 flags a primary-ordering operator that follows another
// primary-ordering operator with no intervening secondary ordering. The
// later call silently discards the earlier order; a refinement was almost
// certainly intended.
type LC005 struct{}

func (LC005) ID() string         { return "LC005" }
func (LC005) Severity() Severity { return SeverityWarning }
func (LC005) Kinds() []string    { return []string{syntax.KindInvocation} }

func (r *LC005) Check(rc *Context, n *sitter.Node) []Finding {
	if !IsOutermost(n) {
		return nil
	}
	chain := Reconstruct(rc.File, n)
	if chain.Root == nil || len(chain.Ops) < 2 {
		return nil
	}

	var findings []Finding
	prevPrimary := ""
	for _, op := range chain.Ops {
		switch {
		case semantic.PrimaryOrderOps[op.Name]:
			if prevPrimary != "" {
				findings = append(findings, rc.finding(r, op.Span(), op.Name, prevPrimary))
			}
			prevPrimary = op.Name
		case semantic.SecondaryOrderOps[op.Name]:
			prevPrimary = ""
		}
	}
	return findings
}
