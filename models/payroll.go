package models

import "time"

const (
	PayrollPending  = "pending"
	PayrollApproved = "approved"
	PayrollPaid     = "paid"
)

type PayrollEntry struct {
	ID          int64     `json:"id"`
	StaffID     int64     `json:"staff_id"`
	StaffName   string    `json:"staff_name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Hours       float64   `json:"hours"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
}
