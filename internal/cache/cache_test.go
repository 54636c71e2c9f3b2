package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLookupMissingPath(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Lookup("a.cs", "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreAndLookup(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Store("a.cs", "h1", []byte(`[{"rule_id":"LC003"}]`)))

	blob, ok, err := c.Lookup("a.cs", "h1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"rule_id":"LC003"}]`, string(blob))
}

func TestLookupMissesOnChangedHash(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Store("a.cs", "h1", []byte("[]")))

	_, ok, err := c.Lookup("a.cs", "h2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreUpserts(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Store("a.cs", "h1", []byte("[]")))
	require.NoError(t, c.Store("a.cs", "h2", []byte(`[{"rule_id":"LC015"}]`)))

	blob, ok, err := c.Lookup("a.cs", "h2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(blob), "LC015")
}

func TestPurgeDropsStaleEntries(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Store("keep.cs", "h1", []byte("[]")))
	require.NoError(t, c.Store("stale.cs", "h1", []byte("[]")))

	require.NoError(t, c.Purge(map[string]bool{"keep.cs": true}))

	_, ok, err := c.Lookup("keep.cs", "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = c.Lookup("stale.cs", "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Store("a.cs", "h1", []byte("[]")))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Lookup("a.cs", "h1")
	require.NoError(t, err)
	assert.True(t, ok)
}
