package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/linqcheck/internal/rules"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, rules.DefaultLargeEntityMembers, cfg.LargeEntityMembers)
	assert.Len(t, cfg.ActiveIDs(), 16)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `rules:
  disabled: [LC003, LC009]
severity:
  LC015: warning
large_entity_members: 20
context_types: [LegacyStore]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	active := cfg.ActiveIDs()
	assert.Len(t, active, 14)
	assert.False(t, active["LC003"])
	assert.False(t, active["LC009"])
	assert.True(t, active["LC001"])

	assert.Equal(t, rules.SeverityWarning, cfg.SeverityFor("LC015"))
	assert.Equal(t, rules.SeverityWarning, cfg.SeverityFor("LC001"), "catalogue default")
	assert.Equal(t, 20, cfg.LargeEntityMembers)
	assert.Equal(t, []string{"LegacyStore"}, cfg.ContextTypes)
}

func TestLoadEnabledListLimitsRun(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `rules:
  enabled: [LC001, LC015]
  disabled: [LC015]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	active := cfg.ActiveIDs()
	assert.Equal(t, map[string]bool{"LC001": true}, active)
}

func TestLoadRejectsUnknownRule(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `rules:
  disabled: [LC016]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LC016")
}

func TestLoadRejectsBadSeverity(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `severity:
  LC001: fatal
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "rules: [\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestFindWalksAncestors(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "services")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := writeConfig(t, root, "large_entity_members: 5\n")

	got, ok := Find(nested)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = Find(filepath.Join(t.TempDir()))
	assert.False(t, ok)
}
