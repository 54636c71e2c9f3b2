package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jward/linqcheck"
	"github.com/jward/linqcheck/internal/cache"
)

var (
	flagNoCache bool
	flagRules   []string
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Analyze C# sources and report findings",
	Long:  "Check parses the target file or directory and reports every detected query anti-pattern. Exits 1 when findings are reported.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable the result cache")
	checkCmd.Flags().StringSliceVar(&flagRules, "rules", nil, "restrict analysis to these rule IDs")
}

func runCheck(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	a, _, err := buildAnalyzer(target)
	if err != nil {
		return err
	}

	findings, err := analyzeTarget(cmd.Context(), a, target)
	if err != nil {
		return err
	}
	findings = filterRules(findings, flagRules)

	if err := writeFindings(cmd.OutOrStdout(), flagFormat, findings); err != nil {
		return err
	}
	if len(findings) > 0 {
		exitCode = 1
	}
	return nil
}

// filterRules keeps only findings whose rule ID is in ids. An empty
// filter keeps everything.
func filterRules(findings []linqcheck.Finding, ids []string) []linqcheck.Finding {
	if len(ids) == 0 {
		return findings
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := findings[:0]
	for _, fd := range findings {
		if want[fd.RuleID] {
			out = append(out, fd)
		}
	}
	return out
}

// analyzeTarget analyzes a single file or a directory tree, consulting the
// result cache for unchanged files unless disabled.
func analyzeTarget(ctx context.Context, a *linqcheck.Analyzer, target string) ([]linqcheck.Finding, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return a.AnalyzeFile(ctx, target)
	}

	paths, err := linqcheck.DiscoverFiles(target)
	if err != nil {
		return nil, err
	}

	var c *cache.Cache
	if !flagNoCache {
		c, err = openCache(target)
		if err != nil {
			// Cache trouble never blocks analysis.
			fmt.Fprintf(os.Stderr, "warning: result cache unavailable: %s\n", err)
		}
	}
	if c == nil {
		return a.AnalyzeFiles(ctx, paths)
	}
	defer c.Close()

	var (
		cached []linqcheck.Finding
		misses []string
		hashes = make(map[string]string, len(paths))
	)
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sum := sha256.Sum256(src)
		hash := hex.EncodeToString(sum[:])
		hashes[path] = hash
		if blob, ok, err := c.Lookup(path, hash); err == nil && ok {
			var hits []linqcheck.Finding
			if json.Unmarshal(blob, &hits) == nil {
				cached = append(cached, hits...)
				continue
			}
		}
		misses = append(misses, path)
	}

	fresh, err := a.AnalyzeFiles(ctx, misses)
	if err != nil {
		return nil, err
	}
	byPath := make(map[string][]linqcheck.Finding)
	for _, fd := range fresh {
		byPath[fd.File] = append(byPath[fd.File], fd)
	}
	keep := make(map[string]bool, len(hashes))
	for _, path := range misses {
		blob, err := json.Marshal(byPath[path])
		if err != nil {
			return nil, fmt.Errorf("encoding findings for %s: %w", path, err)
		}
		if err := c.Store(path, hashes[path], blob); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching %s: %s\n", path, err)
		}
	}
	for path := range hashes {
		keep[path] = true
	}
	if err := c.Purge(keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: pruning cache: %s\n", err)
	}

	all := append(cached, fresh...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		return all[i].Span.Start < all[j].Span.Start
	})
	return all, nil
}

func openCache(root string) (*cache.Cache, error) {
	dir := filepath.Join(root, ".linqcheck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return cache.Open(filepath.Join(dir, "cache.db"))
}
