package linqcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/jward/linqcheck/internal/fixer"
	"github.com/jward/linqcheck/internal/rules"
	"github.com/jward/linqcheck/internal/syntax"
)

// ErrNoFix is returned when a rule has no fix generator or a fix
// precondition fails.
var ErrNoFix = errors.New("linqcheck: no fix available")

// ErrFixConflict is returned when a fix's edits overlap edits already
// accepted in the same batch; the conflicting fix is rejected whole and the
// earlier fixes stand.
var ErrFixConflict = errors.New("linqcheck: fix conflicts with an already-applied fix")

// HasFix reports whether the rule identifier has a fix generator.
func HasFix(ruleID string) bool {
	return fixer.Has(ruleID)
}

// FixSession accumulates fixes against one parsed file. Fix application is a
// separate, explicit, single-threaded pass: the edits belonging to one
// finding apply atomically, and a finding whose edits would overlap earlier
// accepted edits is rejected as a conflict.
type FixSession struct {
	src      []byte
	rc       *rules.Context
	file     *syntax.File
	accepted []fixer.Edit
}

// NewFixSession parses src and prepares a fix pass over it.
func (a *Analyzer) NewFixSession(ctx context.Context, path string, src []byte) (*FixSession, error) {
	f, err := syntax.Parse(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("linqcheck: %w", err)
	}
	return &FixSession{src: src, rc: a.passContext(f), file: f}, nil
}

// Close releases the session's parse tree.
func (s *FixSession) Close() {
	s.file.Close()
}

// Apply generates and accepts the fix for one finding. Returns ErrNoFix when
// the rule is advisory-only or a precondition fails, ErrFixConflict when the
// fix overlaps an earlier accepted one.
func (s *FixSession) Apply(fd Finding) error {
	gen, ok := fixer.For(fd.RuleID)
	if !ok {
		return ErrNoFix
	}
	edits, ok := gen(s.rc, internalFinding(fd))
	if !ok {
		return ErrNoFix
	}
	for _, e := range edits {
		if fixer.ConflictsAny(e, s.accepted) {
			return ErrFixConflict
		}
	}
	s.accepted = append(s.accepted, edits...)
	return nil
}

// Result splices every accepted edit into the source and returns the fixed
// text.
func (s *FixSession) Result() ([]byte, error) {
	return fixer.Apply(s.src, s.accepted)
}

// ApplyFix generates and applies the fix for a single finding against src,
// returning the fixed text.
func (a *Analyzer) ApplyFix(ctx context.Context, path string, src []byte, fd Finding) ([]byte, error) {
	s, err := a.NewFixSession(ctx, path, src)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	if err := s.Apply(fd); err != nil {
		return nil, err
	}
	return s.Result()
}

// FixAll analyzes src, applies every available fix in finding order, and
// returns the fixed text together with the findings fixed and those left
// unfixed (advisory-only, failed preconditions, or conflicts).
func (a *Analyzer) FixAll(ctx context.Context, path string, src []byte) (fixed []byte, applied, unfixed []Finding, err error) {
	findings, err := a.AnalyzeSource(ctx, path, src)
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := a.NewFixSession(ctx, path, src)
	if err != nil {
		return nil, nil, nil, err
	}
	defer s.Close()

	for _, fd := range findings {
		switch applyErr := s.Apply(fd); applyErr {
		case nil:
			applied = append(applied, fd)
		case ErrNoFix, ErrFixConflict:
			unfixed = append(unfixed, fd)
		default:
			return nil, nil, nil, applyErr
		}
	}
	fixed, err = s.Result()
	if err != nil {
		return nil, nil, nil, err
	}
	return fixed, applied, unfixed, nil
}
