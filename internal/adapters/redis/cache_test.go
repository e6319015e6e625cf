package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "safari_tours/internal/adapters/redis"
	"safari_tours/internal/domain"
)

func setupCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := redisad.NewWithClient(client, "test:")
	t.Cleanup(func() {
		_ = c.Close()
		mr.Close()
	})
	require.NoError(t, c.Ping(context.Background()))
	return c, mr
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	ok, err := c.Get(ctx, "package:1", &domain.Package{})
	require.NoError(t, err)
	assert.False(t, ok, "empty cache should miss")

	in := domain.Package{ID: 1, Title: "Gorilla Trek", Country: "rwanda", Status: domain.PackageActive, Images: []string{"a.jpg"}}
	require.NoError(t, c.Set(ctx, "package:1", in, 60))
	assert.True(t, mr.Exists("test:package:1"), "key should carry the prefix")

	var out domain.Package
	ok, err = c.Get(ctx, "package:1", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Images, out.Images)
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "hero", []int{1}, 30))

	mr.FastForward(31 * time.Second)
	ok, err := c.Get(ctx, "hero", &[]int{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_DelMany(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, k, 60))
	}
	require.NoError(t, c.Del(ctx, "a", "b", "missing"))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
	assert.True(t, mr.Exists("test:c"))
	require.NoError(t, c.Del(ctx))
}
