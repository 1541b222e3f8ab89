package services

import (
	"context"
	"fmt"
	"strings"

	"restaurant-backoffice/db"
	"restaurant-backoffice/models"

	"github.com/jackc/pgx/v5"
)

const stockColumns = `id, name, unit, quantity, reorder_level, updated_at`

func scanStock(rows pgx.Rows) ([]models.StockItem, error) {
	defer rows.Close()
	var out []models.StockItem
	for rows.Next() {
		var s models.StockItem
		if err := rows.Scan(&s.ID, &s.Name, &s.Unit, &s.Quantity, &s.ReorderLevel, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func ListStock(ctx context.Context) ([]models.StockItem, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+stockColumns+` FROM stock_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanStock(rows)
}

// ListLowStock returns items at or below their reorder level.
func ListLowStock(ctx context.Context) ([]models.StockItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+stockColumns+` FROM stock_items
		WHERE quantity <= reorder_level
		ORDER BY quantity - reorder_level, name`)
	if err != nil {
		return nil, err
	}
	return scanStock(rows)
}

func AddStockItem(ctx context.Context, name, unit string, quantity, reorderLevel float64) (int64, error) {
	name, unit = strings.TrimSpace(name), strings.TrimSpace(unit)
	if name == "" || unit == "" {
		return 0, fmt.Errorf("%w: name and unit are required", ErrInvalidInput)
	}
	if quantity < 0 || reorderLevel < 0 {
		return 0, fmt.Errorf("%w: quantities must be >= 0", ErrInvalidInput)
	}
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO stock_items (name, unit, quantity, reorder_level, updated_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id`,
		name, unit, quantity, reorderLevel,
	).Scan(&id)
	return id, err
}

// AdjustStock applies delta (positive for deliveries, negative for usage or
// waste) and records the movement. Stock never goes below zero.
func AdjustStock(ctx context.Context, sess models.Session, stockID int64, delta float64, reason string) (*models.StockItem, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrInvalidInput)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var s models.StockItem
	err = tx.QueryRow(ctx, `SELECT `+stockColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, stockID).
		Scan(&s.ID, &s.Name, &s.Unit, &s.Quantity, &s.ReorderLevel, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if s.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: %s has %.3f %s", ErrInsufficientStock, s.Name, s.Quantity, s.Unit)
	}

	err = tx.QueryRow(ctx, `
		UPDATE stock_items SET quantity = quantity + $1, updated_at = now() WHERE id = $2
		RETURNING quantity, updated_at`,
		delta, stockID,
	).Scan(&s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (stock_id, delta, reason, staff_id)
		VALUES ($1, $2, $3, NULLIF($4::bigint, 0))`,
		stockID, delta, reason, sess.StaffID,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

func ListStockMovements(ctx context.Context, stockID int64, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, stock_id, delta, reason, COALESCE(staff_id, 0), created_at
		FROM stock_movements WHERE stock_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		stockID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.StockMovement
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(&m.ID, &m.StockID, &m.Delta, &m.Reason, &m.StaffID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
