package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LRUEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2, 0)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	_, ok, _ := m.Get(ctx, "a") // a becomes most recent
	require.True(t, ok)
	require.NoError(t, m.Set(ctx, "c", []byte("3")))

	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	v, ok, _ := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, 2, m.Len())
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2, 0)
	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "a", []byte("2")))
	v, ok, _ := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("2"), v)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(10, time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	now = now.Add(30 * time.Second)
	_, ok, _ := m.Get(ctx, "a")
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStore_Flush(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0, 0)
	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Flush(ctx))
	assert.Equal(t, 0, m.Len())
	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
	assert.NoError(t, m.Close())
}
