package cache

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

func newMemoryCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := NewBadgerCache(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBlobKey(t *testing.T) {
	assert.Equal(t, "blob:abc123", BlobKey("abc123"))
	assert.Equal(t, "blob:abc123", BlobKey(" ABC123 "))
	assert.True(t, IsBlobKey(BlobKey("abc")))
	assert.False(t, IsBlobKey("blob:"))
	assert.False(t, IsBlobKey("page:abc"))
}

func TestNewBadgerCache_RequiresDirectory(t *testing.T) {
	_, err := NewBadgerCache(Options{})
	assert.Error(t, err)
}

func TestBadgerCache_GetSet(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, BlobKey("missing"))
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.False(t, c.Has(ctx, BlobKey("missing")))

	require.NoError(t, c.Set(ctx, BlobKey("abc"), []byte("aGVsbG8="), 0))
	assert.True(t, c.Has(ctx, BlobKey("abc")))

	got, err := c.Get(ctx, BlobKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("aGVsbG8="), got)
}

func TestBadgerCache_Delete(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, c.Has(ctx, "k"))
}

func TestBadgerCache_ClearAndStats(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	for _, sha := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, BlobKey(sha), []byte(sha), 0))
	}
	assert.Equal(t, int64(3), c.Size())
	assert.Equal(t, int64(3), c.Stats().Entries)
	assert.Empty(t, c.Stats().Directory)

	require.NoError(t, c.Clear())
	assert.Equal(t, int64(0), c.Size())
}

func TestBadgerCache_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	c, err := NewBadgerCache(Options{Directory: dir, GCInterval: time.Hour})
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, BlobKey("abc"), []byte("data"), 0))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	c, err = NewBadgerCache(Options{Directory: dir})
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Get(ctx, BlobKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assert.Equal(t, dir, c.Stats().Directory)
	assert.GreaterOrEqual(t, c.Stats().TotalSize(), int64(0))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.InMemory)
	assert.Equal(t, 5*time.Minute, opts.GCInterval)
}

func TestBadgerCache_LargeValuesCompressed(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	value := []byte(strings.Repeat("ZXhwb3J0IGNvbnN0IGEgPSAx", 200))
	require.NoError(t, c.Set(ctx, BlobKey("abc"), value, time.Hour))

	got, err := c.Get(ctx, BlobKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestCodec(t *testing.T) {
	small := []byte("tiny")
	stored, meta := compress(small)
	assert.Equal(t, small, stored)
	assert.Zero(t, meta)

	big := []byte(strings.Repeat("a", 4096))
	stored, meta = compress(big)
	assert.Equal(t, metaZstd, meta)
	assert.Less(t, len(stored), len(big))

	out, err := decompress(stored, meta)
	require.NoError(t, err)
	assert.Equal(t, big, out)

	_, err = decompress([]byte("not zstd"), metaZstd)
	assert.Error(t, err)
}
