package fixer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/linqcheck/internal/rules"
	"github.com/jward/linqcheck/internal/semantic"
	"github.com/jward/linqcheck/internal/syntax"
)

const fixScaffold = `using System;
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

// findingsFor analyzes src and returns the rule context plus the findings
// for one rule.
func findingsFor(t *testing.T, src, ruleID string) (*rules.Context, []rules.Finding, *syntax.File) {
	t.Helper()
	f, err := syntax.Parse(context.Background(), "fix.cs", []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	rc := rules.NewContext(f, semantic.Build(f, nil), 0)

	var got []rules.Finding
	for _, fd := range rules.Default().Run(rc) {
		if fd.RuleID == ruleID {
			got = append(got, fd)
		}
	}
	return rc, got, f
}

func TestHasCoversOnlyFixableRules(t *testing.T) {
	assert.True(t, Has("LC001"))
	assert.True(t, Has("LC004"))
	assert.True(t, Has("LC015"))
	assert.False(t, Has("LC002"))
	assert.False(t, Has("LC013"))
	assert.False(t, Has("LC016"))
}

func TestFixLC015InsertsOrdering(t *testing.T) {
	src := fixScaffold + `
public class PageService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var page = db.Orders.Skip(10).ToList();
    }
}
`
	rc, findings, f := findingsFor(t, src, "LC015")
	require.Len(t, findings, 1)

	gen, ok := For("LC015")
	require.True(t, ok)
	edits, ok := gen(rc, findings[0])
	require.True(t, ok)

	out, err := Apply(f.Src, edits)
	require.NoError(t, err)
	assert.Contains(t, string(out), "db.Orders.OrderBy(x => x.Id).Skip(10).ToList()")
}

func TestFixLC015NoKeyNoFix(t *testing.T) {
	src := `using System.Linq;

public class Blob
{
    public string Payload { get; set; }
}

public class BlobContext : DbContext
{
    public DbSet<Blob> Blobs { get; set; }
}

public class BlobService
{
    private BlobContext db = new BlobContext();

    public void Run()
    {
        var page = db.Blobs.Take(5).ToList();
    }
}
`
	rc, findings, _ := findingsFor(t, src, "LC015")
	require.Len(t, findings, 1)

	gen, _ := For("LC015")
	_, ok := gen(rc, findings[0])
	assert.False(t, ok, "no identity key to order by")
}

func TestFixLC004HoistsClockRead(t *testing.T) {
	src := fixScaffold + `
public class StampService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var recent = db.Orders.Where(o => o.Id > 0 && DateTime.Now > DateTime.MinValue).ToList();
    }
}
`
	rc, findings, f := findingsFor(t, src, "LC004")
	require.Len(t, findings, 1)

	gen, _ := For("LC004")
	edits, ok := gen(rc, findings[0])
	require.True(t, ok)

	out, err := Apply(f.Src, edits)
	require.NoError(t, err)
	assert.Contains(t, string(out), "var now = DateTime.Now;")
	assert.Contains(t, string(out), "o.Id > 0 && now > DateTime.MinValue")
}

func TestFixLC001HoistsParameterFreeCall(t *testing.T) {
	src := fixScaffold + `
public class PriceService
{
    private ShopContext db = new ShopContext();

    public decimal Threshold()
    {
        return 10;
    }

    public void Run()
    {
        var list = db.Orders.Where(o => o.Id > Threshold()).ToList();
    }
}
`
	rc, findings, f := findingsFor(t, src, "LC001")
	require.Len(t, findings, 1)

	gen, _ := For("LC001")
	edits, ok := gen(rc, findings[0])
	require.True(t, ok)

	out, err := Apply(f.Src, edits)
	require.NoError(t, err)
	assert.Contains(t, string(out), "var thresholdResult = Threshold();")
	assert.Contains(t, string(out), "o.Id > thresholdResult")
}

func TestFixLC001SwitchesToClientWhenParameterCaptured(t *testing.T) {
	src := fixScaffold + `
public class PriceService
{
    private ShopContext db = new ShopContext();

    public decimal Discount(Order o)
    {
        return 1;
    }

    public void Run()
    {
        var list = db.Orders.Where(o => Discount(o) > 1).ToList();
    }
}
`
	rc, findings, f := findingsFor(t, src, "LC001")
	require.Len(t, findings, 1)

	gen, _ := For("LC001")
	edits, ok := gen(rc, findings[0])
	require.True(t, ok)

	out, err := Apply(f.Src, edits)
	require.NoError(t, err)
	assert.Contains(t, string(out), "db.Orders.AsEnumerable().Where(o => Discount(o) > 1).ToList()")
}
