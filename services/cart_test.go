package services

import (
	"context"
	"testing"
	"time"

	"restaurant-backoffice/cache"
	"restaurant-backoffice/cart"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPgCartStore_CacheHit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cc := cache.NewRedisCartCache(client, time.Minute)
	ctx := context.Background()

	c := cart.New()
	c.Add(cart.MenuItemRef{ID: "4", Name: "Lemonade", UnitPrice: 200}, "no ice")
	require.NoError(t, cc.Set(ctx, "staff:1:table:1", c))

	// served from Redis; the database is never touched
	store := NewPgCartStore(cc, zap.NewNop())
	got, err := store.Load(ctx, "staff:1:table:1")
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "no ice", got.Lines()[0].Instructions)
	assert.Equal(t, int64(200), got.Total())
}

func TestMemoryCartStore(t *testing.T) {
	store := NewMemoryCartStore()
	ctx := context.Background()

	c, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	line := c.Add(cart.MenuItemRef{ID: "1", Name: "Burger", UnitPrice: 500}, "", cart.Modifier{Name: "Cheese", PriceDelta: 100})
	c.UpdateQuantity(line.ID, 3)
	require.NoError(t, store.Save(ctx, "k", c))

	// mutating the saved cart does not leak into the store
	c.Clear()
	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	l, ok := loaded.Line(line.ID)
	require.True(t, ok)
	assert.Equal(t, 3, l.Quantity)
	assert.Equal(t, int64(1800), loaded.Total())

	require.NoError(t, store.Delete(ctx, "k"))
	loaded, err = store.Load(ctx, "k")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
