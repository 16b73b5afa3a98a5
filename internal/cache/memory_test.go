package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanwoo-dev/melogate/internal/cache"
)

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory(4)

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "a", []byte("audio-a"))
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("audio-a"), got)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory(2)

	c.Set(ctx, "a", []byte("a"))
	c.Set(ctx, "b", []byte("b"))

	// Touch "a" so "b" becomes the eviction candidate
	_, ok := c.Get(ctx, "a")
	require.True(t, ok)

	c.Set(ctx, "c", []byte("c"))

	_, ok = c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry should have been evicted")
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryUpdateExistingKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory(2)

	c.Set(ctx, "a", []byte("v1"))
	c.Set(ctx, "a", []byte("v2"))

	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
}

func TestKeyCoversAllParameters(t *testing.T) {
	t.Parallel()

	base := cache.Key("melo", "EN", "EN-US", 22050, 1.0, "hello")

	assert.Equal(t, base, cache.Key("melo", "EN", "EN-US", 22050, 1.0, "hello"))
	assert.NotEqual(t, base, cache.Key("openai", "EN", "EN-US", 22050, 1.0, "hello"))
	assert.NotEqual(t, base, cache.Key("melo", "KR", "EN-US", 22050, 1.0, "hello"))
	assert.NotEqual(t, base, cache.Key("melo", "EN", "EN-BR", 22050, 1.0, "hello"))
	assert.NotEqual(t, base, cache.Key("melo", "EN", "EN-US", 44100, 1.0, "hello"))
	assert.NotEqual(t, base, cache.Key("melo", "EN", "EN-US", 22050, 1.5, "hello"))
	assert.NotEqual(t, base, cache.Key("melo", "EN", "EN-US", 22050, 1.0, "hello!"))
}
