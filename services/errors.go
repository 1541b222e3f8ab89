package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrItemUnavailable   = errors.New("menu item unavailable")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidPIN        = errors.New("invalid phone or pin")
	ErrThrottled         = errors.New("too many login attempts")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
)

// notFound maps pgx.ErrNoRows to ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
