package linqcheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasFix(t *testing.T) {
	assert.True(t, HasFix("LC001"))
	assert.True(t, HasFix("LC004"))
	assert.True(t, HasFix("LC015"))
	assert.False(t, HasFix("LC003"))
	assert.False(t, HasFix("LC013"))
}

func TestApplyFixInsertsOrdering(t *testing.T) {
	a := newAnalyzer(t)
	src := []byte(pagingSource)
	findings, err := a.AnalyzeSource(context.Background(), "page.cs", src)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	fixed, err := a.ApplyFix(context.Background(), "page.cs", src, findings[0])
	require.NoError(t, err)
	assert.Contains(t, string(fixed), "db.Orders.OrderBy(x => x.Id).Skip(10).ToList()")
}

func TestApplyFixAdvisoryRuleReturnsErrNoFix(t *testing.T) {
	src := []byte(testScaffold + `
public class ExistsService
{
    private ShopContext db = new ShopContext();

    public bool Run()
    {
        return db.Orders.Count() > 0;
    }
}
`)
	a := newAnalyzer(t)
	findings, err := a.AnalyzeSource(context.Background(), "exists.cs", src)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, "LC003", findings[0].RuleID)

	_, err = a.ApplyFix(context.Background(), "exists.cs", src, findings[0])
	assert.ErrorIs(t, err, ErrNoFix)
}

// Applying a fix and re-analyzing must not reproduce the finding.
func TestFixIsIdempotent(t *testing.T) {
	src := []byte(testScaffold + `
public class StampService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var recent = db.Orders.Where(o => o.Id > 0 && DateTime.Now > DateTime.MinValue).ToList();
    }
}
`)
	a := newAnalyzer(t)
	fixed, applied, unfixed, err := a.FixAll(context.Background(), "stamp.cs", src)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Empty(t, unfixed)
	assert.Equal(t, "LC004", applied[0].RuleID)
	assert.Contains(t, string(fixed), "var now = DateTime.Now;")

	again, err := a.AnalyzeSource(context.Background(), "stamp.cs", fixed)
	require.NoError(t, err)
	for _, fd := range again {
		assert.NotEqual(t, "LC004", fd.RuleID)
	}
}

// Two fixes hoisting before the same statement insert at the same point; the
// later one is rejected whole and the earlier one stands.
func TestFixAllRejectsConflictingFix(t *testing.T) {
	src := []byte(testScaffold + `
public class StampService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var tagged = db.Orders.Select(o => o.Id > 0 ? DateTime.Now : DateTime.UtcNow).ToList();
    }
}
`)
	a := newAnalyzer(t)
	fixed, applied, unfixed, err := a.FixAll(context.Background(), "stamp.cs", src)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	require.Len(t, unfixed, 1)
	assert.Equal(t, "LC004", applied[0].RuleID)
	assert.Equal(t, "LC004", unfixed[0].RuleID)

	assert.Contains(t, string(fixed), "var now = DateTime.Now;")
	assert.NotContains(t, string(fixed), "var utcNow")
	assert.Contains(t, string(fixed), "DateTime.UtcNow", "conflicting fix left untouched")
}

func TestFixAllLeavesAdvisoryFindingsUnfixed(t *testing.T) {
	src := []byte(testScaffold + `
public class MixedService
{
    private ShopContext db = new ShopContext();

    public bool Run()
    {
        var page = db.Orders.Skip(10).ToList();
        return db.Orders.Count() > 0;
    }
}
`)
	a := newAnalyzer(t)
	fixed, applied, unfixed, err := a.FixAll(context.Background(), "mixed.cs", src)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "LC015", applied[0].RuleID)
	require.Len(t, unfixed, 1)
	assert.Equal(t, "LC003", unfixed[0].RuleID)
	assert.Contains(t, string(fixed), "OrderBy(x => x.Id).Skip(10)")
}

func TestFixSessionAccumulatesAcrossFindings(t *testing.T) {
	src := []byte(testScaffold + `
public class StampService
{
    private ShopContext db = new ShopContext();

    public void Run()
    {
        var recent = db.Orders.Where(o => DateTime.Now > DateTime.MinValue).ToList();
        var page = db.Orders.Skip(10).ToList();
    }
}
`)
	a := newAnalyzer(t)
	findings, err := a.AnalyzeSource(context.Background(), "multi.cs", src)
	require.NoError(t, err)

	s, err := a.NewFixSession(context.Background(), "multi.cs", src)
	require.NoError(t, err)
	defer s.Close()

	fixedCount := 0
	for _, fd := range findings {
		if err := s.Apply(fd); err == nil {
			fixedCount++
		}
	}
	require.Equal(t, 2, fixedCount)

	out, err := s.Result()
	require.NoError(t, err)
	assert.Contains(t, string(out), "var now = DateTime.Now;")
	assert.Contains(t, string(out), "OrderBy(x => x.Id).Skip(10)")
}
