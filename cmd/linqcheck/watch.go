package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceDelay coalesces editor save bursts into one analysis run.
const debounceDelay = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-analyze on file changes",
	Long:  "Watch analyzes the target directory, then re-runs the analysis whenever a C# file changes. Stops on interrupt.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch requires a directory, got %s", target)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()
	if err := watchTree(watcher, target); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runPass(cmd.Context(), out, target)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					watchTree(watcher, ev.Name)
				}
			}
			if !strings.HasSuffix(ev.Name, ".cs") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			runPass(cmd.Context(), out, target)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "warning: watcher: %s\n", err)
		}
	}
}

// watchTree registers root and every directory below it, skipping the
// directories analysis also skips.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || skipDir(name)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	switch name {
	case "bin", "obj", "node_modules", "packages":
		return true
	}
	return false
}

// runPass runs one full analysis of the tree and prints the findings.
func runPass(ctx context.Context, out io.Writer, target string) {
	a, _, err := buildAnalyzer(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
		return
	}
	findings, err := a.AnalyzeDirectory(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
		return
	}
	fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
	writeFindings(out, flagFormat, filterRules(findings, flagRules))
}
