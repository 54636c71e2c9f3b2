// Package config loads analyzer configuration from a .linqcheck.yml file:
// rule selection, severity overrides, and rule thresholds.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jward/linqcheck/internal/rules"
)

// FileName is the conventional configuration file name.
const FileName = ".linqcheck.yml"

// Config is the analyzer configuration. The zero value plus Default()'s
// threshold is a full-catalogue run.
type Config struct {
	Rules struct {
		// Enabled limits the run to these IDs when non-empty.
		Enabled []string `yaml:"enabled"`
		// Disabled removes these IDs from the run.
		Disabled []string `yaml:"disabled"`
	} `yaml:"rules"`

	// Severity overrides per rule ID: "warning" or "info".
	Severity map[string]string `yaml:"severity"`

	// LargeEntityMembers is the member-count threshold above which an entity
	// counts as large for the over-fetch check.
	LargeEntityMembers int `yaml:"large_entity_members"`

	// ContextTypes names session classes declared outside the analyzed file.
	ContextTypes []string `yaml:"context_types"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{LargeEntityMembers: rules.DefaultLargeEntityMembers}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Find looks for the configuration file in dir and its ancestors.
func Find(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	for _, id := range append(append([]string{}, c.Rules.Enabled...), c.Rules.Disabled...) {
		if _, ok := rules.Catalog[id]; !ok {
			return fmt.Errorf("unknown rule %q", id)
		}
	}
	for id, sev := range c.Severity {
		if _, ok := rules.Catalog[id]; !ok {
			return fmt.Errorf("unknown rule %q in severity overrides", id)
		}
		if sev != "warning" && sev != "info" {
			return fmt.Errorf("invalid severity %q for %s", sev, id)
		}
	}
	if c.LargeEntityMembers < 0 {
		return fmt.Errorf("large_entity_members must be non-negative")
	}
	return nil
}

// SeverityFor applies any override for the rule, falling back to the
// catalogue default.
func (c *Config) SeverityFor(ruleID string) rules.Severity {
	if sev, ok := c.Severity[ruleID]; ok {
		if sev == "warning" {
			return rules.SeverityWarning
		}
		return rules.SeverityInfo
	}
	return rules.Catalog[ruleID].Severity
}

// ActiveIDs resolves the enabled/disabled lists against the catalogue.
func (c *Config) ActiveIDs() map[string]bool {
	active := map[string]bool{}
	if len(c.Rules.Enabled) > 0 {
		for _, id := range c.Rules.Enabled {
			active[id] = true
		}
	} else {
		for _, id := range rules.CatalogIDs() {
			active[id] = true
		}
	}
	for _, id := range c.Rules.Disabled {
		delete(active, id)
	}
	return active
}
