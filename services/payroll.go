package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"restaurant-backoffice/db"
	"restaurant-backoffice/models"
)

// PayrollFilter selects payroll entries. Zero fields match everything.
// From/To are inclusive and match any entry whose period overlaps them.
type PayrollFilter struct {
	From    time.Time
	To      time.Time
	Status  string
	StaffID int64
}

func (f PayrollFilter) Match(e models.PayrollEntry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.StaffID != 0 && e.StaffID != f.StaffID {
		return false
	}
	if !f.From.IsZero() && e.PeriodEnd.Before(dateOnly(f.From)) {
		return false
	}
	if !f.To.IsZero() && e.PeriodStart.After(dateOnly(f.To)) {
		return false
	}
	return true
}

// FilterPayroll keeps entries matching f, preserving order.
func FilterPayroll(entries []models.PayrollEntry, f PayrollFilter) []models.PayrollEntry {
	out := make([]models.PayrollEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// PayrollTotal sums the amounts of entries.
func PayrollTotal(entries []models.PayrollEntry) int64 {
	var t int64
	for _, e := range entries {
		t += e.Amount
	}
	return t
}

// PayrollAmount is hours × hourly rate, rounded to the nearest minor unit.
func PayrollAmount(hours float64, hourlyRate int64) int64 {
	return int64(math.Round(hours * float64(hourlyRate)))
}

func ValidPayrollStatus(s string) bool {
	switch s {
	case models.PayrollPending, models.PayrollApproved, models.PayrollPaid:
		return true
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ListPayroll loads all entries with staff names, newest period first.
// Filtering is done with FilterPayroll.
func ListPayroll(ctx context.Context) ([]models.PayrollEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT p.id, p.staff_id, s.full_name, p.period_start, p.period_end, p.hours, p.amount, p.status
		FROM payroll_entries p
		JOIN staff s ON s.id = p.staff_id
		ORDER BY p.period_start DESC, p.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.PayrollEntry
	for rows.Next() {
		var e models.PayrollEntry
		if err := rows.Scan(&e.ID, &e.StaffID, &e.StaffName, &e.PeriodStart, &e.PeriodEnd, &e.Hours, &e.Amount, &e.Status); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddPayrollEntry records hours for a period and prices them at the staff
// member's current hourly rate.
func AddPayrollEntry(ctx context.Context, staffID int64, start, end time.Time, hours float64) (*models.PayrollEntry, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period ends before it starts", ErrInvalidInput)
	}
	if hours < 0 {
		return nil, fmt.Errorf("%w: hours must be >= 0", ErrInvalidInput)
	}
	st, err := GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	e := models.PayrollEntry{
		StaffID: staffID, StaffName: st.FullName,
		PeriodStart: dateOnly(start), PeriodEnd: dateOnly(end),
		Hours: hours, Amount: PayrollAmount(hours, st.HourlyRate),
		Status: models.PayrollPending,
	}
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO payroll_entries (staff_id, period_start, period_end, hours, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.StaffID, e.PeriodStart, e.PeriodEnd, e.Hours, e.Amount, e.Status,
	).Scan(&e.ID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SetPayrollStatus moves an entry forward: pending -> approved -> paid.
func SetPayrollStatus(ctx context.Context, entryID int64, status string) error {
	if !ValidPayrollStatus(status) {
		return fmt.Errorf("%w: payroll status %q", ErrInvalidInput, status)
	}
	var from string
	switch status {
	case models.PayrollApproved:
		from = models.PayrollPending
	case models.PayrollPaid:
		from = models.PayrollApproved
	default:
		return fmt.Errorf("%w: cannot move payroll back to %s", ErrInvalidTransition, status)
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE payroll_entries SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		status, entryID, from,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %d is not %s", ErrInvalidTransition, entryID, from)
	}
	return nil
}

func MarkPayrollPaid(ctx context.Context, entryID int64) error {
	return SetPayrollStatus(ctx, entryID, models.PayrollPaid)
}
