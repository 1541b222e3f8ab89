package models

import "time"

type StockItem struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"` // "kg", "l", "pcs"
	Quantity     float64   `json:"quantity"`
	ReorderLevel float64   `json:"reorder_level"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NeedsReorder is true when stock is at or below the reorder level.
func (s StockItem) NeedsReorder() bool {
	return s.Quantity <= s.ReorderLevel
}

type StockMovement struct {
	ID        int64     `json:"id"`
	StockID   int64     `json:"stock_id"`
	Delta     float64   `json:"delta"`
	Reason    string    `json:"reason"`
	StaffID   int64     `json:"staff_id"`
	CreatedAt time.Time `json:"created_at"`
}
