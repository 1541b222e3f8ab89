package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/db"
	"restaurant-backoffice/models"

	"github.com/jackc/pgx/v5"
)

const (
	OrderStatusNew       = "new"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderStatusNew:       {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusServed},
	OrderStatusServed:    {OrderStatusPaid},
}

func ValidStatusTransition(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanSetStatus reports whether a staff role may move an order into status.
func CanSetStatus(role, status string) bool {
	if role == models.RoleManager {
		return true
	}
	switch status {
	case OrderStatusPreparing, OrderStatusReady:
		return role == models.RoleCook
	case OrderStatusServed, OrderStatusCancelled:
		return role == models.RoleWaiter
	case OrderStatusPaid:
		return role == models.RoleCashier || role == models.RoleWaiter
	}
	return false
}

func IsOpenStatus(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusCancelled:
		return false
	}
	return true
}

// PriceCatalog is the server-side price list a submission is checked against.
type PriceCatalog struct {
	Items     map[string]models.MenuItem
	Modifiers map[string]map[string]int64 // menu item id -> modifier name -> delta
}

// PriceSubmission re-prices every submitted line from the catalog. The
// client total is ignored.
func PriceSubmission(sub cart.Submission, cat PriceCatalog) ([]models.OrderItem, int64, error) {
	if len(sub.Lines) == 0 {
		return nil, 0, ErrEmptyCart
	}
	items := make([]models.OrderItem, 0, len(sub.Lines))
	var total int64
	for _, l := range sub.Lines {
		if l.Quantity <= 0 {
			return nil, 0, fmt.Errorf("%w: quantity %d for item %s", ErrInvalidInput, l.Quantity, l.MenuItemID)
		}
		mi, ok := cat.Items[l.MenuItemID]
		if !ok || !mi.Available {
			return nil, 0, fmt.Errorf("%w: %s", ErrItemUnavailable, l.MenuItemID)
		}
		unit := mi.Price
		names := make([]string, 0, len(l.Modifiers))
		for _, m := range l.Modifiers {
			delta, ok := cat.Modifiers[l.MenuItemID][m.Name]
			if !ok {
				return nil, 0, fmt.Errorf("%w: modifier %q not offered for %s", ErrInvalidInput, m.Name, mi.Name)
			}
			unit += delta
			names = append(names, m.Name)
		}
		oi := models.OrderItem{
			MenuItemID:   l.MenuItemID,
			Name:         mi.Name,
			Quantity:     l.Quantity,
			UnitPrice:    unit,
			Instructions: strings.TrimSpace(l.Instructions),
			Modifiers:    names,
		}
		total += oi.Subtotal()
		items = append(items, oi)
	}
	return items, total, nil
}

func loadCatalog(ctx context.Context, tx pgx.Tx, sub cart.Submission) (PriceCatalog, error) {
	cat := PriceCatalog{
		Items:     make(map[string]models.MenuItem),
		Modifiers: make(map[string]map[string]int64),
	}
	ids := make([]int64, 0, len(sub.Lines))
	for _, l := range sub.Lines {
		id, err := strconv.ParseInt(l.MenuItemID, 10, 64)
		if err != nil {
			return cat, fmt.Errorf("%w: menu item id %q", ErrInvalidInput, l.MenuItemID)
		}
		ids = append(ids, id)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, category, name, price, available FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return cat, err
	}
	menu, err := scanMenuItems(rows)
	if err != nil {
		return cat, err
	}
	for _, it := range menu {
		cat.Items[it.ID] = it
	}

	modRows, err := tx.Query(ctx, `
		SELECT menu_item_id, name, price_delta FROM menu_modifiers WHERE menu_item_id = ANY($1)`, ids)
	if err != nil {
		return cat, err
	}
	defer modRows.Close()
	for modRows.Next() {
		var itemID int64
		var name string
		var delta int64
		if err := modRows.Scan(&itemID, &name, &delta); err != nil {
			return cat, err
		}
		key := strconv.FormatInt(itemID, 10)
		if cat.Modifiers[key] == nil {
			cat.Modifiers[key] = make(map[string]int64)
		}
		cat.Modifiers[key][name] = delta
	}
	return cat, modRows.Err()
}

// SubmitOrder persists a finalized cart for the session's table. Prices are
// taken from the menu, not from the submission.
func SubmitOrder(ctx context.Context, sess models.Session, sub cart.Submission) (*models.Order, error) {
	if len(sub.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if sess.TableID == 0 {
		return nil, fmt.Errorf("%w: no table selected", ErrInvalidInput)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var active bool
	if err := tx.QueryRow(ctx, `SELECT active FROM staff WHERE id = $1`, sess.StaffID).Scan(&active); err != nil {
		return nil, notFound(err)
	}
	if !active {
		return nil, fmt.Errorf("%w: staff %d is deactivated", ErrInvalidInput, sess.StaffID)
	}

	cat, err := loadCatalog(ctx, tx, sub)
	if err != nil {
		return nil, err
	}
	items, total, err := PriceSubmission(sub, cat)
	if err != nil {
		return nil, err
	}

	o := models.Order{TableID: sess.TableID, StaffID: sess.StaffID, Status: OrderStatusNew, Total: total, ClientTotal: sub.ClientTotal}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (table_id, staff_id, status, total, client_total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		o.TableID, o.StaffID, o.Status, o.Total, o.ClientTotal,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, it := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, instructions, modifiers)
			VALUES ($1, $2::bigint, $3, $4, $5, NULLIF($6, ''), $7)`,
			o.ID, it.MenuItemID, it.Name, it.Quantity, it.UnitPrice, it.Instructions, it.Modifiers,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, from_status, to_status, actor_id)
		VALUES ($1, NULL, $2, $3)`,
		o.ID, OrderStatusNew, sess.StaffID,
	)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE dining_tables SET status = $1 WHERE id = $2 AND status <> $1`,
		models.TableOccupied, sess.TableID,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrderStatus moves an order to newStatus, records history and frees
// the table once no open order remains on it.
func UpdateOrderStatus(ctx context.Context, sess models.Session, orderID int64, newStatus string) (*models.Order, error) {
	if !CanSetStatus(sess.Role, newStatus) {
		return nil, fmt.Errorf("%w: role %s cannot set %s", ErrInvalidTransition, sess.Role, newStatus)
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o models.Order
	err = tx.QueryRow(ctx, `
		SELECT id, table_id, staff_id, status, total, client_total, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE`,
		orderID,
	).Scan(&o.ID, &o.TableID, &o.StaffID, &o.Status, &o.Total, &o.ClientTotal, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if !ValidStatusTransition(o.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, newStatus)
	}

	from := o.Status
	err = tx.QueryRow(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
		RETURNING updated_at`,
		newStatus, orderID,
	).Scan(&o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = newStatus

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, from_status, to_status, actor_id)
		VALUES ($1, $2, $3, $4)`,
		orderID, from, newStatus, sess.StaffID,
	)
	if err != nil {
		return nil, err
	}

	if !IsOpenStatus(newStatus) {
		_, err = tx.Exec(ctx, `
			UPDATE dining_tables SET status = $1
			WHERE id = $2 AND status = $3
			  AND NOT EXISTS (
			      SELECT 1 FROM orders
			      WHERE table_id = $2 AND status NOT IN ($4, $5)
			  )`,
			models.TableFree, o.TableID, models.TableOccupied, OrderStatusPaid, OrderStatusCancelled,
		)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var o models.Order
	err := db.Pool.QueryRow(ctx, `
		SELECT id, table_id, staff_id, status, total, client_total, created_at, updated_at
		FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.TableID, &o.StaffID, &o.Status, &o.Total, &o.ClientTotal, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// ListOpenOrders returns orders not yet paid or cancelled. staffID 0 means all staff.
func ListOpenOrders(ctx context.Context, staffID int64) ([]models.Order, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, table_id, staff_id, status, total, client_total, created_at, updated_at
		FROM orders
		WHERE status NOT IN ($1, $2) AND ($3::bigint = 0 OR staff_id = $3)
		ORDER BY created_at`,
		OrderStatusPaid, OrderStatusCancelled, staffID,
	)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

// ListOrdersBetween returns orders created in [from, to) dates (YYYY-MM-DD).
func ListOrdersBetween(ctx context.Context, from, to string) ([]models.Order, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, table_id, staff_id, status, total, client_total, created_at, updated_at
		FROM orders
		WHERE created_at >= $1::date AND created_at < $2::date
		ORDER BY created_at`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()
	var out []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.TableID, &o.StaffID, &o.Status, &o.Total, &o.ClientTotal, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price, COALESCE(instructions, ''), modifiers
		FROM order_items WHERE order_id = $1
		ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		var menuID int64
		if err := rows.Scan(&it.ID, &it.OrderID, &menuID, &it.Name, &it.Quantity, &it.UnitPrice, &it.Instructions, &it.Modifiers); err != nil {
			return nil, err
		}
		it.MenuItemID = strconv.FormatInt(menuID, 10)
		out = append(out, it)
	}
	return out, rows.Err()
}

// IsInputError reports whether err was caused by the caller's input rather
// than by the store.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrItemUnavailable) || errors.Is(err, ErrInvalidTransition)
}
