package product_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hampers-api/internal/product"
)

func TestCacheVersionBumpChangesListKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := product.NewCache(client, time.Minute)
	ctx := context.Background()

	v0, err := cache.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, v0)

	params := product.ListParams{Query: "tea", Offset: 0, Limit: 20}
	before := cache.ListKey(v0, params)

	require.NoError(t, cache.SetJSON(ctx, before, map[string]string{"k": "v"}))
	var out map[string]string
	hit, err := cache.GetJSON(ctx, before, &out)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "v", out["k"])

	require.NoError(t, cache.Invalidate(ctx))
	v1, err := cache.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, v1)
	require.NotEqual(t, before, cache.ListKey(v1, params))

	hit, err = cache.GetJSON(ctx, cache.ListKey(v1, params), &out)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheNilClientIsDisabled(t *testing.T) {
	cache := product.NewCache(nil, time.Minute)
	ctx := context.Background()

	v, err := cache.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, v)
	require.NoError(t, cache.Invalidate(ctx))
	require.NoError(t, cache.SetJSON(ctx, "k", 1))

	var out int
	hit, err := cache.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, hit)
}
