package linqcheck

import (
	"context"
	"fmt"
	"os"

	"github.com/jward/linqcheck/internal/config"
	"github.com/jward/linqcheck/internal/rules"
	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

// Finding is one diagnostic, positioned within its file. Spans are byte
// offsets; lines and columns are 1-based.
type Finding struct {
	RuleID    string   `json:"rule_id"`
	Severity  string   `json:"severity"`
	Message   string   `json:"message"`
	File      string   `json:"file"`
	Span      Span     `json:"span"`
	StartLine int      `json:"line"`
	StartCol  int      `json:"col"`
	EndLine   int      `json:"end_line"`
	EndCol    int      `json:"end_col"`
	Args      []string `json:"args,omitempty"`
	Related   []Span   `json:"related,omitempty"`
}

// Analyzer runs the rule registry over C# sources. It is immutable after
// New and safe to share across goroutines; independent files may be
// analyzed in parallel.
type Analyzer struct {
	registry *rules.Registry
	cfg      *config.Config
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig sets the analyzer configuration (rule selection, severity
// overrides, thresholds).
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		a.cfg = cfg
	}
}

// New builds an Analyzer with the full catalogue filtered by the
// configuration's enabled/disabled rule lists.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{cfg: config.Default()}
	for _, opt := range opts {
		opt(a)
	}
	reg, err := rules.Default().Subset(a.cfg.ActiveIDs())
	if err != nil {
		return nil, fmt.Errorf("linqcheck: build registry: %w", err)
	}
	a.registry = reg
	return a, nil
}

// Rules returns the catalogue entries active in this analyzer, in
// registration order.
func (a *Analyzer) Rules() []RuleInfo {
	var infos []RuleInfo
	for _, r := range a.registry.Rules() {
		infos = append(infos, rules.Catalog[r.ID()])
	}
	return infos
}

// AnalyzeSource analyzes one C# buffer and returns its findings ordered by
// (span start, rule ID). The path is a label only.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, src []byte) ([]Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := syntax.Parse(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("linqcheck: %w", err)
	}
	defer f.Close()

	rc := a.passContext(f)
	var findings []Finding
	for _, fd := range a.registry.Run(rc) {
		findings = append(findings, a.publish(f, fd))
	}
	return findings, nil
}

// AnalyzeFile reads and analyzes one file from disk.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) ([]Finding, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("linqcheck: read file: %w", err)
	}
	return a.AnalyzeSource(ctx, path, src)
}

// passContext builds the per-pass rule context for a parsed file.
func (a *Analyzer) passContext(f *syntax.File) *rules.Context {
	sem := semantic.Build(f, a.cfg.ContextTypes)
	return rules.NewContext(f, sem, a.cfg.LargeEntityMembers)
}

// publish converts an internal finding into the positioned public form,
// applying any configured severity override.
func (a *Analyzer) publish(f *syntax.File, fd rules.Finding) Finding {
	startLine, startCol := f.Position(fd.PrimarySpan.Start)
	endLine, endCol := f.Position(fd.PrimarySpan.End)
	return Finding{
		RuleID:    fd.RuleID,
		Severity:  a.cfg.SeverityFor(fd.RuleID).String(),
		Message:   fd.Message(),
		File:      f.Path,
		Span:      fd.PrimarySpan,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   endLine,
		EndCol:    endCol,
		Args:      fd.MessageArgs,
		Related:   fd.RelatedSpans,
	}
}

// internalFinding reconstructs the rule-level finding a public Finding was
// published from, for fix generation.
func internalFinding(fd Finding) rules.Finding {
	sev := rules.SeverityInfo
	if fd.Severity == rules.SeverityWarning.String() {
		sev = rules.SeverityWarning
	}
	return rules.Finding{
		RuleID:       fd.RuleID,
		Severity:     sev,
		PrimarySpan:  fd.Span,
		MessageArgs:  fd.Args,
		RelatedSpans: fd.Related,
	}
}
