package models

import "time"

// Order is a row from orders table.
type Order struct {
	ID          int64     `json:"id"`
	TableID     int64     `json:"table_id"`
	StaffID     int64     `json:"staff_id"`
	Status      string    `json:"status"`
	Total       int64     `json:"total"`        // priced by the server
	ClientTotal int64     `json:"client_total"` // what the cart showed; advisory
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderItem is one priced line of a submitted order.
type OrderItem struct {
	ID           int64    `json:"id"`
	OrderID      int64    `json:"order_id"`
	MenuItemID   string   `json:"menu_item_id"`
	Name         string   `json:"name"`
	Quantity     int      `json:"quantity"`
	UnitPrice    int64    `json:"unit_price"` // item price plus modifier deltas
	Instructions string   `json:"instructions"`
	Modifiers    []string `json:"modifiers,omitempty"`
}

func (i OrderItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

type DailyStats struct {
	Date           string `json:"date"`
	OrdersCount    int    `json:"orders_count"`
	PaidCount      int    `json:"paid_count"`
	CancelledCount int    `json:"cancelled_count"`
	Revenue        int64  `json:"revenue"`
	AverageTicket  int64  `json:"average_ticket"`
}

type DayRevenue struct {
	Date    time.Time `json:"date"`
	Orders  int       `json:"orders"`
	Revenue int64     `json:"revenue"`
}
