package rules

import (
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/syntax"
)

// reservedIDs may never be registered. LC016 exists in the identifier space
// with no assigned semantics.
var reservedIDs = map[string]bool{"LC016": true}

// Registry is the immutable rule set plus its per-kind dispatch table. Build
// once at startup and share freely; it is never mutated after construction.
type Registry struct {
	rules  []Rule
	byKind map[string][]Rule
}

// NewRegistry builds a registry from the given rules in registration order.
// Duplicate or reserved identifiers are rejected.
func NewRegistry(rules ...Rule) (*Registry, error) {
	seen := make(map[string]bool, len(rules))
	byKind := make(map[string][]Rule)
	for _, r := range rules {
		id := r.ID()
		if reservedIDs[id] {
			return nil, fmt.Errorf("rules: identifier %s is reserved", id)
		}
		if seen[id] {
			return nil, fmt.Errorf("rules: duplicate rule %s", id)
		}
		seen[id] = true
		for _, kind := range r.Kinds() {
			byKind[kind] = append(byKind[kind], r)
		}
	}
	return &Registry{rules: rules, byKind: byKind}, nil
}

// Default returns the registry holding the full catalogue.
func Default() *Registry {
	reg, err := NewRegistry(
		&LC001{}, &LC002{}, &LC003{}, &LC004{}, &LC005{}, &LC006{},
		&LC007{}, &LC008{}, &LC009{}, &LC010{}, &LC011{}, &LC012{},
		&LC013{}, &LC014{}, &LC015{}, &LC017{},
	)
	if err != nil {
		// The built-in catalogue has no duplicate or reserved IDs.
		panic(err)
	}
	return reg
}

// Rules returns the registered rules in registration order.
func (r *Registry) Rules() []Rule { return r.rules }

// Subset returns a new registry limited to the named rule IDs.
func (r *Registry) Subset(ids map[string]bool) (*Registry, error) {
	var kept []Rule
	for _, rule := range r.rules {
		if ids[rule.ID()] {
			kept = append(kept, rule)
		}
	}
	return NewRegistry(kept...)
}

// Without returns a new registry excluding the named rule IDs.
func (r *Registry) Without(ids map[string]bool) (*Registry, error) {
	var kept []Rule
	for _, rule := range r.rules {
		if !ids[rule.ID()] {
			kept = append(kept, rule)
		}
	}
	return NewRegistry(kept...)
}

// Run walks the file's tree exactly once, dispatching each node to every
// rule registered for its kind, and returns the findings stable-sorted by
// (span start, rule ID).
func (r *Registry) Run(rc *Context) []Finding {
	var findings []Finding
	syntax.Walk(rc.File.Root(), func(n *sitter.Node) bool {
		interested := r.byKind[n.Type()]
		for _, rule := range interested {
			findings = append(findings, rule.Check(rc, n)...)
		}
		return true
	})
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].PrimarySpan.Start != findings[j].PrimarySpan.Start {
			return findings[i].PrimarySpan.Start < findings[j].PrimarySpan.Start
		}
		return findings[i].RuleID < findings[j].RuleID
	})
	return findings
}
