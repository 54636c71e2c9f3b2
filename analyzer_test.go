package linqcheck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScaffold = `using System;
using System.Linq;

public class Order
{
    public int Id { get; set; }
    public string Name { get; set; }
}

public class ShopContext : DbContext
{
    public DbSet<Order> Orders { get; set; }
}
`

const pagingSource = testScaffold + `
public class PageService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var page = db.Orders.Skip(10).ToList();
    }
}
`

func newAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(opts...)
	require.NoError(t, err)
	return a
}

func TestAnalyzeSourcePositionsFindings(t *testing.T) {
	a := newAnalyzer(t)
	findings, err := a.AnalyzeSource(context.Background(), "page.cs", []byte(pagingSource))
	require.NoError(t, err)
	require.Len(t, findings, 1)

	fd := findings[0]
	assert.Equal(t, "LC015", fd.RuleID)
	assert.Equal(t, "info", fd.Severity)
	assert.Equal(t, "page.cs", fd.File)
	assert.Contains(t, fd.Message, "Skip")
	assert.Greater(t, fd.StartLine, 1)
	assert.Greater(t, fd.StartCol, 1)
	assert.Equal(t, fd.StartLine, fd.EndLine)
	assert.Equal(t, "Skip(10)", pagingSource[fd.Span.Start:fd.Span.End])
}

func TestAnalyzeSourceOrdering(t *testing.T) {
	src := testScaffold + `
public class MixedService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var page = db.Orders.Skip(10).ToList();
        var sorted = db.Orders.OrderBy(o => o.Id).OrderBy(o => o.Name).ToList();
    }
}
`
	a := newAnalyzer(t)
	findings, err := a.AnalyzeSource(context.Background(), "mixed.cs", []byte(src))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(findings), 2)
	for i := 1; i < len(findings); i++ {
		assert.LessOrEqual(t, findings[i-1].Span.Start, findings[i].Span.Start)
	}
}

func TestAnalyzeSourceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := newAnalyzer(t)
	_, err := a.AnalyzeSource(ctx, "page.cs", []byte(pagingSource))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithConfigDisablesRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.Disabled = []string{"LC015"}
	a := newAnalyzer(t, WithConfig(cfg))

	findings, err := a.AnalyzeSource(context.Background(), "page.cs", []byte(pagingSource))
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Len(t, a.Rules(), 15)
}

func TestWithConfigSeverityOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Severity = map[string]string{"LC015": "warning"}
	a := newAnalyzer(t, WithConfig(cfg))

	findings, err := a.AnalyzeSource(context.Background(), "page.cs", []byte(pagingSource))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "warning", findings[0].Severity)
}

func TestWithConfigExtraContextTypes(t *testing.T) {
	src := `using System.Linq;

public class Order
{
    public int Id { get; set; }
}

public class LegacyStore : StoreBase
{
    public DbSet<Order> Orders { get; set; }
}

public class PageService
{
    private LegacyStore db = new LegacyStore();

    public void Run()
    {
        var page = db.Orders.Take(5).ToList();
    }
}
`
	a := newAnalyzer(t)
	findings, err := a.AnalyzeSource(context.Background(), "legacy.cs", []byte(src))
	require.NoError(t, err)
	assert.Empty(t, findings, "unknown base class resolves nothing")

	cfg := DefaultConfig()
	cfg.ContextTypes = []string{"StoreBase"}
	a = newAnalyzer(t, WithConfig(cfg))
	findings, err = a.AnalyzeSource(context.Background(), "legacy.cs", []byte(src))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "LC015", findings[0].RuleID)
}

func TestCatalog(t *testing.T) {
	infos := Catalog()
	require.Len(t, infos, 16)
	assert.Equal(t, "LC001", infos[0].ID)
	assert.Equal(t, "LC017", infos[len(infos)-1].ID)
	for _, info := range infos {
		assert.NotEqual(t, "LC016", info.ID)
		assert.NotEmpty(t, info.Summary)
		assert.NotEmpty(t, info.Template)
	}
}

func TestDiscoverFilesSkipsBuildOutput(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))

	write := func(rel string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte("public class C {}"), 0o644))
	}
	write("Program.cs")
	write(filepath.Join("src", "Service.cs"))
	write(filepath.Join("bin", "Generated.cs"))
	write(filepath.Join(".git", "Hook.cs"))
	write(filepath.Join("src", "readme.md"))

	paths, err := DiscoverFiles(root)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Contains(t, paths, filepath.Join(root, "Program.cs"))
	assert.Contains(t, paths, filepath.Join(root, "src", "Service.cs"))
}

func TestAnalyzeDirectoryMergesSortedByPath(t *testing.T) {
	root := t.TempDir()
	svc := func(class string) string {
		return testScaffold + `
public class ` + class + `
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var page = db.Orders.Skip(10).ToList();
    }
}
`
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.cs"), []byte(svc("BService")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.cs"), []byte(svc("AService")), 0o644))

	a := newAnalyzer(t)
	findings, err := a.AnalyzeDirectory(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, filepath.Join(root, "a.cs"), findings[0].File)
	assert.Equal(t, filepath.Join(root, "b.cs"), findings[1].File)
}
