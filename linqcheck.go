// Package linqcheck is a rule-based static analyzer and auto-fixer for
// query-composition anti-patterns in C# code written against Entity
// Framework Core's deferred LINQ surface. It parses sources with
// tree-sitter, builds a heuristic per-file semantic model, and runs an
// immutable registry of pattern detectors over each file in a single pass.
package linqcheck
