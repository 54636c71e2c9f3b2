package linqcheck

import (
	"github.com/jward/linqcheck/internal/config"
	"github.com/jward/linqcheck/internal/rules"
	"github.com/jward/linqcheck/internal/syntax"
)

// Public type aliases for internal types used in the Analyzer API. These are
// Go type aliases (=) — identical to the internal types at compile time.

type Span = syntax.Span
type Severity = rules.Severity
type RuleInfo = rules.RuleInfo
type Config = config.Config

const (
	SeverityInfo    = rules.SeverityInfo
	SeverityWarning = rules.SeverityWarning
)

// Catalog returns every catalogue entry in lexical rule-ID order, whether or
// not a given analyzer has it enabled.
func Catalog() []RuleInfo {
	var infos []RuleInfo
	for _, id := range rules.CatalogIDs() {
		infos = append(infos, rules.Catalog[id])
	}
	return infos
}

// DefaultConfig returns the configuration used when no configuration file is
// present.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a .linqcheck.yml file.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// FindConfig looks for a configuration file in dir and its ancestors.
func FindConfig(dir string) (string, bool) { return config.Find(dir) }
