package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleDocs = []TaggedDocument{
	{ID: "rule_296_26", Kind: KindRule, Source: "rulebook", SourceURL: "https://example.cybozu.com/k/296/show#record=26", Body: "前受金の扱い"},
	{ID: "schedule_238_8_tab3", Kind: KindSchedule, Source: "schedule", SourceURL: "https://example.cybozu.com/k/238/show#record=8&tab=3", Body: "【11月】"},
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	require.NoError(t, c.Set(ctx, "rulebook", sampleDocs, 20*time.Millisecond))

	got, ok := c.Get(ctx, "rulebook")
	require.True(t, ok)
	assert.Equal(t, sampleDocs, got)

	time.Sleep(40 * time.Millisecond)
	_, ok = c.Get(ctx, "rulebook")
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)

	require.NoError(t, c.Set(ctx, "rulebook", sampleDocs, 0))
	require.NoError(t, c.Delete(ctx, "rulebook"))

	_, ok := c.Get(ctx, "rulebook")
	assert.False(t, ok)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(rdb)
	ctx := context.Background()

	_, ok := c.Get(ctx, "rulebook")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "rulebook", sampleDocs, time.Hour))
	assert.True(t, mr.Exists("knowledge:rulebook"))

	got, ok := c.Get(ctx, "rulebook")
	require.True(t, ok)
	assert.Equal(t, sampleDocs, got)

	mr.FastForward(2 * time.Hour)
	_, ok = c.Get(ctx, "rulebook")
	assert.False(t, ok)

	require.NoError(t, c.Delete(ctx, "rulebook"))
}
