package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"restaurant-backoffice/db"
	"restaurant-backoffice/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func ListMenuByCategory(ctx context.Context, category string, onlyAvailable bool) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, category, name, price, available FROM menu_items
		WHERE category = $1 AND (available OR NOT $2)
		ORDER BY id`,
		category, onlyAvailable,
	)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func ListAllMenu(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, category, name, price, available FROM menu_items
		ORDER BY category, id`,
	)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func scanMenuItems(rows pgx.Rows) ([]models.MenuItem, error) {
	defer rows.Close()
	var items []models.MenuItem
	for rows.Next() {
		var id int64
		var it models.MenuItem
		if err := rows.Scan(&id, &it.Category, &it.Name, &it.Price, &it.Available); err != nil {
			return nil, err
		}
		it.ID = strconv.FormatInt(id, 10)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ValidateMenuItem checks the fields AddMenuItem stores.
func ValidateMenuItem(category, name string, price int64) error {
	if !models.ValidCategory(category) {
		return fmt.Errorf("%w: category %q", ErrInvalidInput, category)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	return nil
}

func AddMenuItem(ctx context.Context, category, name string, price int64) (int64, error) {
	if err := ValidateMenuItem(category, name, price); err != nil {
		return 0, err
	}
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO menu_items (category, name, price, available) VALUES ($1, $2, $3, true)
		RETURNING id`,
		category, strings.TrimSpace(name), price,
	).Scan(&id)
	return id, err
}

func GetMenuItem(ctx context.Context, idStr string) (*models.MenuItem, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: menu item id %q", ErrInvalidInput, idStr)
	}
	it := models.MenuItem{ID: idStr}
	err = db.Pool.QueryRow(ctx, `
		SELECT category, name, price, available FROM menu_items WHERE id = $1`, id,
	).Scan(&it.Category, &it.Name, &it.Price, &it.Available)
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func SetMenuItemAvailable(ctx context.Context, id int64, available bool) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE menu_items SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMenuItem removes the item and its modifiers. Items that were ever
// ordered stay referenced by order_items and can only be made unavailable.
func DeleteMenuItem(ctx context.Context, id int64) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: item %d has orders, mark it unavailable instead", ErrInvalidInput, id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func ListModifiers(ctx context.Context, menuItemID string) ([]models.MenuModifier, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, menu_item_id, name, price_delta FROM menu_modifiers
		WHERE menu_item_id = $1::bigint
		ORDER BY id`,
		menuItemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mods []models.MenuModifier
	for rows.Next() {
		var m models.MenuModifier
		var itemID int64
		if err := rows.Scan(&m.ID, &itemID, &m.Name, &m.PriceDelta); err != nil {
			return nil, err
		}
		m.MenuItemID = strconv.FormatInt(itemID, 10)
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

func GetModifier(ctx context.Context, id int64) (*models.MenuModifier, error) {
	var m models.MenuModifier
	var itemID int64
	err := db.Pool.QueryRow(ctx, `
		SELECT id, menu_item_id, name, price_delta FROM menu_modifiers WHERE id = $1`, id,
	).Scan(&m.ID, &itemID, &m.Name, &m.PriceDelta)
	if err != nil {
		return nil, notFound(err)
	}
	m.MenuItemID = strconv.FormatInt(itemID, 10)
	return &m, nil
}

func AddModifier(ctx context.Context, menuItemID int64, name string, priceDelta int64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: modifier name is required", ErrInvalidInput)
	}
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO menu_modifiers (menu_item_id, name, price_delta) VALUES ($1, $2, $3)
		RETURNING id`,
		menuItemID, strings.TrimSpace(name), priceDelta,
	).Scan(&id)
	if err != nil {
		return 0, modifierError(err, menuItemID, name)
	}
	return id, nil
}

// modifierError maps constraint violations on menu_modifiers to input errors.
// Orders price modifiers by name, so a name is unique per item.
func modifierError(err error, menuItemID int64, name string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: item %d already has a modifier named %q", ErrInvalidInput, menuItemID, strings.TrimSpace(name))
	case "23503":
		return fmt.Errorf("%w: menu item %d does not exist", ErrInvalidInput, menuItemID)
	}
	return err
}
