package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-twitter/internal/testutil"
)

func TestRedisFollowerCache_GetSetInvalidate(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewRedisFollowerCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []string{"f1", "f2"}))
	ids, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"f1", "f2"}, ids)

	// 空列表也要能命中
	require.NoError(t, c.Set(ctx, "b", nil))
	ids, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ids)

	require.NoError(t, c.Invalidate(ctx, "a", "b"))
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []string{"f1"}))
	mr.FastForward(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRedisFollowerCache_CorruptValueIsMiss(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewRedisFollowerCache(client, time.Minute)
	require.NoError(t, mr.Set("followers:index:a", "{not json"))

	_, ok, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("followers:index:a"))
}

func TestRedisFollowerCache_ErrorWhenRedisDown(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	c := NewRedisFollowerCache(client, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "a")
	assert.Error(t, err)
}
