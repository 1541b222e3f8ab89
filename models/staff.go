package models

import "time"

const (
	RoleManager = "manager"
	RoleWaiter  = "waiter"
	RoleCook    = "cook"
	RoleCashier = "cashier"
)

func ValidRole(r string) bool {
	switch r {
	case RoleManager, RoleWaiter, RoleCook, RoleCashier:
		return true
	}
	return false
}

type Staff struct {
	ID         int64     `json:"id"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	HourlyRate int64     `json:"hourly_rate"`
	Active     bool      `json:"active"`
	TgUserID   *int64    `json:"tg_user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
