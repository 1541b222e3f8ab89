package services

import (
	"context"

	"restaurant-backoffice/db"
	"restaurant-backoffice/models"
)

// GetDailyStats summarizes orders created on date (YYYY-MM-DD). Revenue
// counts paid orders only.
func GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	s := models.DailyStats{Date: date}
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = $2)::int,
			COUNT(*) FILTER (WHERE status = $3)::int,
			COALESCE(SUM(total) FILTER (WHERE status = $2), 0)::bigint
		FROM orders
		WHERE created_at::date = $1::date`,
		date, OrderStatusPaid, OrderStatusCancelled,
	).Scan(&s.OrdersCount, &s.PaidCount, &s.CancelledCount, &s.Revenue)
	if err != nil {
		return nil, err
	}
	s.AverageTicket = AverageTicket(s.Revenue, s.PaidCount)
	return &s, nil
}

// AverageTicket is revenue per paid order, rounded half up to a minor unit.
func AverageTicket(revenue int64, paid int) int64 {
	if paid <= 0 {
		return 0
	}
	n := int64(paid)
	return (revenue + n/2) / n
}

// RevenueByDay returns paid revenue per day in [from, to] inclusive.
func RevenueByDay(ctx context.Context, from, to string) ([]models.DayRevenue, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT d::date,
		       COUNT(o.id)::int,
		       COALESCE(SUM(o.total), 0)::bigint
		FROM generate_series($1::date, $2::date, interval '1 day') AS d
		LEFT JOIN orders o ON o.created_at::date = d::date AND o.status = $3
		GROUP BY d
		ORDER BY d`,
		from, to, OrderStatusPaid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.DayRevenue
	for rows.Next() {
		var r models.DayRevenue
		if err := rows.Scan(&r.Date, &r.Orders, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
