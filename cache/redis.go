package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func NewRedisCartCache(client *redis.Client, ttl time.Duration) *RedisCartCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisCartCache{client: client, baseTTL: ttl}
}

type RedisCartCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCartCache) Get(ctx context.Context, key string) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c := cart.New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return c, nil
}

func (r *RedisCartCache) Set(ctx context.Context, key string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// jitter keeps carts saved in the same burst from expiring together
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, cartKey(key), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cartKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(key string) string {
	return "cart:" + key
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisSessionStore) Create(ctx context.Context, s models.Session) (string, error) {
	token := uuid.NewString()
	if err := r.put(ctx, token, s); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &s, nil
}

// Update replaces the session and refreshes its TTL. The token must exist.
func (r *RedisSessionStore) Update(ctx context.Context, token string, s models.Session) error {
	n, err := r.client.Exists(ctx, sessionKey(token)).Result()
	if err != nil {
		return fmt.Errorf("redis exists failed: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return r.put(ctx, token, s)
}

func (r *RedisSessionStore) Delete(ctx context.Context, token string) error {
	s, err := r.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(token))
		pipe.SRem(ctx, staffSessionsKey(s.StaffID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) RevokeStaff(ctx context.Context, staffID int64) (int, error) {
	tokens, err := r.client.SMembers(ctx, staffSessionsKey(staffID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers failed: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKey(t))
	}
	keys = append(keys, staffSessionsKey(staffID))
	n, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis delete failed: %w", err)
	}
	// the index key itself is counted when it existed
	if len(tokens) > 0 {
		n--
	}
	return int(n), nil
}

// put writes the session and indexes its token under the staff member. The
// index lives at least as long as any session in it.
func (r *RedisSessionStore) put(ctx context.Context, token string, s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(token), data, r.ttl)
		pipe.SAdd(ctx, staffSessionsKey(s.StaffID), token)
		pipe.Expire(ctx, staffSessionsKey(s.StaffID), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return "session:" + token
}

func staffSessionsKey(staffID int64) string {
	return "staff_sessions:" + strconv.FormatInt(staffID, 10)
}
