package cache

import (
	"context"
	"testing"
	"time"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestCartCache_SetGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	cc := NewRedisCartCache(client, time.Minute)
	ctx := context.Background()

	c := cart.New()
	c.Add(cart.MenuItemRef{ID: "1", Name: "Soup", UnitPrice: 300}, "", cart.Modifier{Name: "Bread", PriceDelta: 50})
	c.Add(cart.MenuItemRef{ID: "1", Name: "Soup", UnitPrice: 300}, "", cart.Modifier{Name: "Bread", PriceDelta: 50})

	require.NoError(t, cc.Set(ctx, "staff:1:table:2", c))
	assert.True(t, mr.Exists("cart:staff:1:table:2"))

	ttl := mr.TTL("cart:staff:1:table:2")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, 6*time.Minute)

	got, err := cc.Get(ctx, "staff:1:table:2")
	require.NoError(t, err)
	assert.Equal(t, c.Lines(), got.Lines())
	assert.Equal(t, int64(700), got.Total())
}

func TestCartCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cc := NewRedisCartCache(client, 0)

	_, err := cc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCartCache_CorruptData(t *testing.T) {
	client, mr := setupTestRedis(t)
	cc := NewRedisCartCache(client, 0)
	require.NoError(t, mr.Set("cart:k", "{not json"))

	_, err := cc.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestCartCache_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cc := NewRedisCartCache(client, 0)
	ctx := context.Background()

	require.NoError(t, cc.Set(ctx, "k", cart.New()))
	require.NoError(t, cc.Delete(ctx, "k"))
	assert.False(t, mr.Exists("cart:k"))
	require.NoError(t, cc.Delete(ctx, "k"))
}

func TestCartCache_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	cc := NewRedisCartCache(client, 0)
	mr.Close()

	_, err := cc.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSessionStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	ss := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	sess := models.Session{StaffID: 7, StaffName: "Ann", Role: models.RoleWaiter}
	token, err := ss.Create(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, time.Hour, mr.TTL("session:"+token))

	got, err := ss.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess, *got)

	sess.TableID = 4
	require.NoError(t, ss.Update(ctx, token, sess))
	got, err = ss.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.TableID)

	require.NoError(t, ss.Delete(ctx, token))
	_, err = ss.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, ss.Update(ctx, token, sess), ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	ss := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	token, err := ss.Create(ctx, models.Session{StaffID: 1})
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = ss.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_RevokeStaff(t *testing.T) {
	client, mr := setupTestRedis(t)
	ss := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	phone, err := ss.Create(ctx, models.Session{StaffID: 2, Role: models.RoleWaiter})
	require.NoError(t, err)
	tablet, err := ss.Create(ctx, models.Session{StaffID: 2, Role: models.RoleWaiter})
	require.NoError(t, err)
	other, err := ss.Create(ctx, models.Session{StaffID: 3, Role: models.RoleCook})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("staff_sessions:2"))

	n, err := ss.RevokeStaff(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, tok := range []string{phone, tablet} {
		_, err = ss.Get(ctx, tok)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	}
	assert.False(t, mr.Exists("staff_sessions:2"))

	_, err = ss.Get(ctx, other)
	assert.NoError(t, err)

	n, err = ss.RevokeStaff(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSessionStore_DeleteUnindexes(t *testing.T) {
	client, mr := setupTestRedis(t)
	ss := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	token, err := ss.Create(ctx, models.Session{StaffID: 5})
	require.NoError(t, err)
	require.NoError(t, ss.Delete(ctx, token))
	assert.False(t, mr.Exists("staff_sessions:5"))

	// deleting twice is fine
	require.NoError(t, ss.Delete(ctx, token))
}
