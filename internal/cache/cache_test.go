package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLRU(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestLRU(10, time.Minute)

	c.Set(ctx, "a", "1")
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "1", got)

	clock.advance(2 * time.Minute)
	_, ok = c.Get(ctx, "a")
	assert.False(t, ok, "entry should expire after ttl")
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestLRU(2, time.Hour)

	c.Set(ctx, "a", "1")
	c.Set(ctx, "b", "2")
	_, _ = c.Get(ctx, "a") // a becomes most recent
	c.Set(ctx, "c", "3")

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	_, okC := c.Get(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestLRUCache_DeleteAndPrefix(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestLRU(10, time.Hour)

	c.Set(ctx, "s1:totals", "x")
	c.Set(ctx, "s1:charts", "y")
	c.Set(ctx, "s2:totals", "z")

	assert.Equal(t, 2, c.DeletePrefix(ctx, "s1:"))
	assert.Equal(t, 1, c.Size())

	c.Delete(ctx, "s2:totals", "missing")
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_CleanExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestLRU(10, time.Minute)

	c.Set(ctx, "old", "1")
	clock.advance(30 * time.Second)
	c.SetWithTTL(ctx, "long", "2", time.Hour)
	clock.advance(45 * time.Second)

	assert.Equal(t, 1, c.CleanExpired())
	_, ok := c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	c, _ := newTestLRU(1, time.Millisecond)
	m.Register(c)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	NewManager().Stop() // never started
}

func TestRedisCache_UnreachableIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisCache[map[string]int](client, "carteira:test:", time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k", map[string]int{"a": 1})
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, "carteira:test:k", c.key("k"))
	c.Delete(ctx)
	c.Delete(ctx, "k")
}
