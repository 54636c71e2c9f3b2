package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/linqcheck"
)

var flagDryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [path]",
	Short: "Apply automatic fixes where available",
	Long:  "Fix rewrites the target sources in place, applying the automatic fix for every fixable finding. Findings without a fix, and fixes whose edits overlap an already applied fix, are reported unchanged.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would change without writing files")
}

func runFix(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}
	a, _, err := buildAnalyzer(target)
	if err != nil {
		return err
	}

	paths := []string{target}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		paths, err = linqcheck.DiscoverFiles(target)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var remaining []linqcheck.Finding
	totalApplied := 0
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fixed, applied, unfixed, err := a.FixAll(cmd.Context(), path, src)
		if err != nil {
			return err
		}
		remaining = append(remaining, unfixed...)
		if len(applied) == 0 {
			continue
		}
		totalApplied += len(applied)
		for _, fd := range applied {
			fmt.Fprintf(out, "%s %s\n", fixedLabel(flagDryRun), findingLine(fd))
		}
		if !flagDryRun {
			if err := os.WriteFile(path, fixed, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
	}

	if len(remaining) > 0 {
		fmt.Fprintln(out)
		if err := writeFindings(out, flagFormat, remaining); err != nil {
			return err
		}
		exitCode = 1
	}
	if totalApplied > 0 {
		fmt.Fprintf(out, "\n%d %s applied\n", totalApplied, plural(totalApplied, "fix", "fixes"))
	}
	return nil
}

func fixedLabel(dry bool) string {
	if dry {
		return "would fix"
	}
	return "fixed"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
