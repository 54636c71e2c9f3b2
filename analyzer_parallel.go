package linqcheck

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// skipDirs are directories excluded from discovery.
var skipDirs = map[string]bool{
	"bin": true, "obj": true, "node_modules": true, "packages": true,
}

// DiscoverFiles walks root and returns all C# source paths, skipping hidden
// directories and build output.
func DiscoverFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".cs") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("linqcheck: walk directory: %w", err)
	}
	return paths, nil
}

// AnalyzeDirectory analyzes every C# file under root. Files are processed by
// a worker pool of independent per-file passes sharing only the immutable
// registry; the combined findings are ordered by (path, span start, rule ID).
func (a *Analyzer) AnalyzeDirectory(ctx context.Context, root string) ([]Finding, error) {
	paths, err := DiscoverFiles(root)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFiles(ctx, paths)
}

// AnalyzeFiles analyzes the given files in parallel. Cancellation is checked
// between files; a file-level parse failure aborts the run.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]Finding, error) {
	perFile := make([][]Finding, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			findings, err := a.AnalyzeFile(ctx, path)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", path, err)
			}
			perFile[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(paths))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return paths[order[i]] < paths[order[j]] })

	var all []Finding
	for _, i := range order {
		all = append(all, perFile[i]...)
	}
	return all, nil
}
