package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"restaurant-backoffice/cache"
	"restaurant-backoffice/cart"
	"restaurant-backoffice/db"

	"go.uber.org/zap"
)

// CartStore keeps the working cart of each session.
type CartStore interface {
	Load(ctx context.Context, key string) (*cart.Cart, error)
	Save(ctx context.Context, key string, c *cart.Cart) error
	Delete(ctx context.Context, key string) error
}

// PgCartStore keeps carts in the carts table with a Redis copy in front.
// The cache is optional; cache errors are logged and never fail a call.
type PgCartStore struct {
	cache cache.CartCache
	log   *zap.Logger
}

func NewPgCartStore(c cache.CartCache, log *zap.Logger) *PgCartStore {
	return &PgCartStore{cache: c, log: log}
}

// Load returns the session cart; a missing cart is an empty cart.
func (s *PgCartStore) Load(ctx context.Context, key string) (*cart.Cart, error) {
	if s.cache != nil {
		c, err := s.cache.Get(ctx, key)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cart cache get", zap.String("key", key), zap.Error(err))
		}
	}

	c, err := GetCart(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, c); err != nil {
			s.log.Warn("cart cache backfill", zap.String("key", key), zap.Error(err))
		}
	}
	return c, nil
}

func (s *PgCartStore) Save(ctx context.Context, key string, c *cart.Cart) error {
	if err := SaveCart(ctx, key, c); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, c); err != nil {
			s.log.Warn("cart cache set", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (s *PgCartStore) Delete(ctx context.Context, key string) error {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("cart cache delete", zap.String("key", key), zap.Error(err))
		}
	}
	return DeleteCart(ctx, key)
}

func GetCart(ctx context.Context, key string) (*cart.Cart, error) {
	var linesJSON []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT lines FROM carts WHERE session_key = $1`,
		key,
	).Scan(&linesJSON)
	c := cart.New()
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return c, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
		}
	}
	return c, nil
}

func SaveCart(ctx context.Context, key string, c *cart.Cart) error {
	linesJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO carts (session_key, lines, items_total, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_key) DO UPDATE SET
			lines = $2,
			items_total = $3,
			updated_at = now()`,
		key, linesJSON, c.Total(),
	)
	return err
}

func DeleteCart(ctx context.Context, key string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM carts WHERE session_key = $1`, key)
	return err
}

// MemoryCartStore is a process-local CartStore for tests and for running
// without a database.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string][]byte)}
}

func (m *MemoryCartStore) Load(_ context.Context, key string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cart.New()
	if data, ok := m.carts[key]; ok {
		if err := json.Unmarshal(data, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (m *MemoryCartStore) Save(_ context.Context, key string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryCartStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.carts, key)
	m.mu.Unlock()
	return nil
}
