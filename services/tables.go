package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"restaurant-backoffice/db"
	"restaurant-backoffice/models"
)

func ValidTableStatus(s string) bool {
	switch s {
	case models.TableFree, models.TableOccupied, models.TableReserved:
		return true
	}
	return false
}

// AddTable inserts a dining table.
func AddTable(ctx context.Context, label string, seats int) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, fmt.Errorf("%w: table label is required", ErrInvalidInput)
	}
	if seats <= 0 {
		return 0, fmt.Errorf("%w: seats must be > 0", ErrInvalidInput)
	}
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO dining_tables (label, seats, status)
		VALUES ($1, $2, $3)
		RETURNING id`,
		label, seats, models.TableFree,
	).Scan(&id)
	return id, err
}

// GetTable returns a table by ID.
func GetTable(ctx context.Context, id int64) (*models.Table, error) {
	var t models.Table
	err := db.Pool.QueryRow(ctx, `SELECT id, label, seats, status FROM dining_tables WHERE id = $1`, id).
		Scan(&t.ID, &t.Label, &t.Seats, &t.Status)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ListTables returns all tables ordered by label (natural order: 2 before 10).
func ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, label, seats, status FROM dining_tables`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.Table
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.Label, &t.Seats, &t.Status); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	SortTables(res)
	return res, nil
}

// SortTables orders tables by label, comparing digit runs numerically.
func SortTables(ts []models.Table) {
	sort.SliceStable(ts, func(i, j int) bool {
		return naturalLess(ts[i].Label, ts[j].Label)
	})
}

func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		xa, ra := leadingDigits(a)
		xb, rb := leadingDigits(b)
		if xa != "" && xb != "" {
			na := strings.TrimLeft(xa, "0")
			nb := strings.TrimLeft(xb, "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

// SetTableStatus sets a table status. A table with open orders cannot be freed.
func SetTableStatus(ctx context.Context, id int64, status string) error {
	if !ValidTableStatus(status) {
		return fmt.Errorf("%w: table status %q", ErrInvalidInput, status)
	}
	if status == models.TableFree {
		var open int
		err := db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM orders WHERE table_id = $1 AND status NOT IN ($2, $3)`,
			id, OrderStatusPaid, OrderStatusCancelled,
		).Scan(&open)
		if err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("%w: table has %d open order(s)", ErrInvalidTransition, open)
		}
	}
	tag, err := db.Pool.Exec(ctx, `UPDATE dining_tables SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
