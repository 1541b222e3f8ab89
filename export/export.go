// Package export writes back-office reports as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"restaurant-backoffice/cart"
	"restaurant-backoffice/models"
)

const dateLayout = "2006-01-02"

var (
	payrollHeader = []string{"id", "staff_id", "staff_name", "period_start", "period_end", "hours", "amount", "status"}
	ordersHeader  = []string{"id", "created_at", "table_id", "staff_id", "status", "total", "client_total"}
	stockHeader   = []string{"id", "name", "unit", "quantity", "reorder_level", "needs_reorder"}
)

func WritePayrollCSV(w io.Writer, entries []models.PayrollEntry) error {
	return write(w, payrollHeader, len(entries), func(i int) []string {
		e := entries[i]
		return []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.StaffID, 10),
			e.StaffName,
			e.PeriodStart.Format(dateLayout),
			e.PeriodEnd.Format(dateLayout),
			strconv.FormatFloat(e.Hours, 'f', 2, 64),
			cart.FormatMoney(e.Amount),
			e.Status,
		}
	})
}

func WriteOrdersCSV(w io.Writer, orders []models.Order) error {
	return write(w, ordersHeader, len(orders), func(i int) []string {
		o := orders[i]
		return []string{
			strconv.FormatInt(o.ID, 10),
			o.CreatedAt.Format("2006-01-02 15:04"),
			strconv.FormatInt(o.TableID, 10),
			strconv.FormatInt(o.StaffID, 10),
			o.Status,
			cart.FormatMoney(o.Total),
			cart.FormatMoney(o.ClientTotal),
		}
	})
}

func WriteStockCSV(w io.Writer, items []models.StockItem) error {
	return write(w, stockHeader, len(items), func(i int) []string {
		s := items[i]
		return []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Unit,
			strconv.FormatFloat(s.Quantity, 'f', -1, 64),
			strconv.FormatFloat(s.ReorderLevel, 'f', -1, 64),
			strconv.FormatBool(s.NeedsReorder()),
		}
	})
}

func write(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
