package cache

import (
	"context"
	"errors"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/models"
)

type CartCache interface {
	Get(ctx context.Context, key string) (*cart.Cart, error)
	Set(ctx context.Context, key string, c *cart.Cart) error
	Delete(ctx context.Context, key string) error
}

// SessionStore maps opaque API tokens to staff sessions.
type SessionStore interface {
	Create(ctx context.Context, s models.Session) (string, error)
	Get(ctx context.Context, token string) (*models.Session, error)
	Update(ctx context.Context, token string, s models.Session) error
	Delete(ctx context.Context, token string) error
	// RevokeStaff drops every session of the staff member and reports how
	// many were live.
	RevokeStaff(ctx context.Context, staffID int64) (int, error)
}

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrSessionNotFound = errors.New("session not found")
)
