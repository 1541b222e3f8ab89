package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"restaurant-backoffice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, b *bytes.Buffer) [][]string {
	t.Helper()
	recs, err := csv.NewReader(b).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWritePayrollCSV(t *testing.T) {
	var buf bytes.Buffer
	entries := []models.PayrollEntry{{
		ID: 1, StaffID: 3, StaffName: "Doe, Jane",
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Hours:       40.5, Amount: 60750, Status: models.PayrollApproved,
	}}
	require.NoError(t, WritePayrollCSV(&buf, entries))

	recs := readAll(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, payrollHeader, recs[0])
	assert.Equal(t, []string{"1", "3", "Doe, Jane", "2026-01-01", "2026-01-15", "40.50", "607.50", "approved"}, recs[1])
}

func TestWriteOrdersCSV(t *testing.T) {
	var buf bytes.Buffer
	orders := []models.Order{
		{ID: 9, TableID: 2, StaffID: 4, Status: "paid", Total: 1600, ClientTotal: 1500,
			CreatedAt: time.Date(2026, 2, 3, 19, 45, 0, 0, time.UTC)},
	}
	require.NoError(t, WriteOrdersCSV(&buf, orders))

	recs := readAll(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"9", "2026-02-03 19:45", "2", "4", "paid", "16.00", "15.00"}, recs[1])
}

func TestWriteStockCSV(t *testing.T) {
	var buf bytes.Buffer
	items := []models.StockItem{
		{ID: 1, Name: "Flour", Unit: "kg", Quantity: 2.5, ReorderLevel: 5},
		{ID: 2, Name: "Milk", Unit: "l", Quantity: 12, ReorderLevel: 4},
	}
	require.NoError(t, WriteStockCSV(&buf, items))

	recs := readAll(t, &buf)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"1", "Flour", "kg", "2.5", "5", "true"}, recs[1])
	assert.Equal(t, []string{"2", "Milk", "l", "12", "4", "false"}, recs[2])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStockCSV(&buf, nil))
	assert.Equal(t, "id,name,unit,quantity,reorder_level,needs_reorder\n", buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	err := WriteOrdersCSV(failWriter{}, []models.Order{{ID: 1}})
	assert.Error(t, err)
}
