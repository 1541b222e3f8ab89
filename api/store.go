package api

import (
	"context"
	"time"

	"restaurant-backoffice/models"
	"restaurant-backoffice/services"
)

// Backoffice is the persistence the handlers read and write besides the
// cart, which goes through services.Desk.
type Backoffice interface {
	AuthenticatePIN(ctx context.Context, phone, pin string) (*models.Staff, error)

	ListMenu(ctx context.Context, category string) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	AddMenuItem(ctx context.Context, category, name string, price int64) (int64, error)
	ListModifiers(ctx context.Context, menuItemID string) ([]models.MenuModifier, error)
	GetModifier(ctx context.Context, id int64) (*models.MenuModifier, error)
	DeleteMenuItem(ctx context.Context, id int64) error

	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	ListOpenOrders(ctx context.Context, staffID int64) ([]models.Order, error)
	ListOrdersBetween(ctx context.Context, from, to string) ([]models.Order, error)

	GetTable(ctx context.Context, id int64) (*models.Table, error)
	ListTables(ctx context.Context) ([]models.Table, error)
	SetTableStatus(ctx context.Context, id int64, status string) error

	ListStock(ctx context.Context, lowOnly bool) ([]models.StockItem, error)
	AdjustStock(ctx context.Context, sess models.Session, id int64, delta float64, reason string) (*models.StockItem, error)
	AddStockItem(ctx context.Context, name, unit string, quantity, reorderLevel float64) (int64, error)
	ListStockMovements(ctx context.Context, stockID int64, limit int) ([]models.StockMovement, error)

	ListStaff(ctx context.Context, includeInactive bool) ([]models.Staff, error)
	AddStaff(ctx context.Context, fullName, phone, role string, hourlyRate int64) (*models.Staff, string, error)
	DeactivateStaff(ctx context.Context, id int64) error
	ResetPIN(ctx context.Context, id int64) (string, error)

	GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error)
	RevenueByDay(ctx context.Context, from, to string) ([]models.DayRevenue, error)
	ListPayroll(ctx context.Context) ([]models.PayrollEntry, error)
	AddPayrollEntry(ctx context.Context, staffID int64, start, end time.Time, hours float64) (*models.PayrollEntry, error)
	SetPayrollStatus(ctx context.Context, entryID int64, status string) error
}

// DBStore is the Postgres-backed Backoffice.
type DBStore struct{}

func (DBStore) AuthenticatePIN(ctx context.Context, phone, pin string) (*models.Staff, error) {
	return services.AuthenticatePIN(ctx, phone, pin)
}

func (DBStore) ListMenu(ctx context.Context, category string) ([]models.MenuItem, error) {
	if category == "" {
		return services.ListAllMenu(ctx)
	}
	return services.ListMenuByCategory(ctx, category, false)
}

func (DBStore) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	return services.GetMenuItem(ctx, id)
}

func (DBStore) AddMenuItem(ctx context.Context, category, name string, price int64) (int64, error) {
	return services.AddMenuItem(ctx, category, name, price)
}

func (DBStore) ListModifiers(ctx context.Context, menuItemID string) ([]models.MenuModifier, error) {
	return services.ListModifiers(ctx, menuItemID)
}

func (DBStore) GetModifier(ctx context.Context, id int64) (*models.MenuModifier, error) {
	return services.GetModifier(ctx, id)
}

func (DBStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return services.GetOrder(ctx, id)
}

func (DBStore) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return services.ListOrderItems(ctx, orderID)
}

func (DBStore) ListOpenOrders(ctx context.Context, staffID int64) ([]models.Order, error) {
	return services.ListOpenOrders(ctx, staffID)
}

func (DBStore) ListOrdersBetween(ctx context.Context, from, to string) ([]models.Order, error) {
	return services.ListOrdersBetween(ctx, from, to)
}

func (DBStore) GetTable(ctx context.Context, id int64) (*models.Table, error) {
	return services.GetTable(ctx, id)
}

func (DBStore) ListTables(ctx context.Context) ([]models.Table, error) {
	return services.ListTables(ctx)
}

func (DBStore) SetTableStatus(ctx context.Context, id int64, status string) error {
	return services.SetTableStatus(ctx, id, status)
}

func (DBStore) ListStock(ctx context.Context, lowOnly bool) ([]models.StockItem, error) {
	if lowOnly {
		return services.ListLowStock(ctx)
	}
	return services.ListStock(ctx)
}

func (DBStore) AdjustStock(ctx context.Context, sess models.Session, id int64, delta float64, reason string) (*models.StockItem, error) {
	return services.AdjustStock(ctx, sess, id, delta, reason)
}

func (DBStore) ListStaff(ctx context.Context, includeInactive bool) ([]models.Staff, error) {
	return services.ListStaff(ctx, includeInactive)
}

func (DBStore) GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	return services.GetDailyStats(ctx, date)
}

func (DBStore) RevenueByDay(ctx context.Context, from, to string) ([]models.DayRevenue, error) {
	return services.RevenueByDay(ctx, from, to)
}

func (DBStore) ListPayroll(ctx context.Context) ([]models.PayrollEntry, error) {
	return services.ListPayroll(ctx)
}

func (DBStore) DeleteMenuItem(ctx context.Context, id int64) error {
	return services.DeleteMenuItem(ctx, id)
}

func (DBStore) AddStockItem(ctx context.Context, name, unit string, quantity, reorderLevel float64) (int64, error) {
	return services.AddStockItem(ctx, name, unit, quantity, reorderLevel)
}

func (DBStore) ListStockMovements(ctx context.Context, stockID int64, limit int) ([]models.StockMovement, error) {
	return services.ListStockMovements(ctx, stockID, limit)
}

func (DBStore) AddStaff(ctx context.Context, fullName, phone, role string, hourlyRate int64) (*models.Staff, string, error) {
	return services.AddStaff(ctx, fullName, phone, role, hourlyRate)
}

func (DBStore) DeactivateStaff(ctx context.Context, id int64) error {
	return services.DeactivateStaff(ctx, id)
}

func (DBStore) ResetPIN(ctx context.Context, id int64) (string, error) {
	return services.ResetPIN(ctx, id)
}

func (DBStore) AddPayrollEntry(ctx context.Context, staffID int64, start, end time.Time, hours float64) (*models.PayrollEntry, error) {
	return services.AddPayrollEntry(ctx, staffID, start, end, hours)
}

func (DBStore) SetPayrollStatus(ctx context.Context, entryID int64, status string) error {
	return services.SetPayrollStatus(ctx, entryID, status)
}
