package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/linqcheck"
)

var (
	flagFormat string
	flagConfig string
)

// exitCode is set by commands that finish successfully but found issues.
var exitCode int

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

var rootCmd = &cobra.Command{
	Use:           "linqcheck",
	Short:         "Static analysis for EF Core query anti-patterns",
	Long:          "Linqcheck parses C# sources with tree-sitter and runs a registry of pattern detectors for query-composition anti-patterns, with automatic fixes for a subset of rules.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "configuration file (default: nearest .linqcheck.yml)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(watchCmd)
}

func validateFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q (expected text or json)", format)
	}
	return nil
}

// resolveTarget turns the optional positional argument into an absolute
// path, defaulting to the working directory.
func resolveTarget(args []string) (string, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", target, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("target %s: %w", target, err)
	}
	return abs, nil
}

// buildAnalyzer loads configuration for the target and constructs the
// analyzer.
func buildAnalyzer(target string) (*linqcheck.Analyzer, *linqcheck.Config, error) {
	cfg := linqcheck.DefaultConfig()
	cfgPath := flagConfig
	if cfgPath == "" {
		dir := target
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			dir = filepath.Dir(target)
		}
		if found, ok := linqcheck.FindConfig(dir); ok {
			cfgPath = found
		}
	}
	if cfgPath != "" {
		loaded, err := linqcheck.LoadConfig(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	a, err := linqcheck.New(linqcheck.WithConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}
