package services

import (
	"testing"
	"time"

	"restaurant-backoffice/models"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func payrollFixture() []models.PayrollEntry {
	return []models.PayrollEntry{
		{ID: 1, StaffID: 1, PeriodStart: day("2026-01-01"), PeriodEnd: day("2026-01-15"), Amount: 1000, Status: models.PayrollPaid},
		{ID: 2, StaffID: 2, PeriodStart: day("2026-01-01"), PeriodEnd: day("2026-01-15"), Amount: 2000, Status: models.PayrollApproved},
		{ID: 3, StaffID: 1, PeriodStart: day("2026-01-16"), PeriodEnd: day("2026-01-31"), Amount: 1500, Status: models.PayrollPending},
		{ID: 4, StaffID: 2, PeriodStart: day("2026-02-01"), PeriodEnd: day("2026-02-14"), Amount: 2500, Status: models.PayrollPending},
	}
}

func ids(entries []models.PayrollEntry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterPayroll(t *testing.T) {
	entries := payrollFixture()
	tests := []struct {
		name string
		f    PayrollFilter
		want []int64
	}{
		{"zero filter", PayrollFilter{}, []int64{1, 2, 3, 4}},
		{"status", PayrollFilter{Status: models.PayrollPending}, []int64{3, 4}},
		{"staff", PayrollFilter{StaffID: 2}, []int64{2, 4}},
		{"from overlaps", PayrollFilter{From: day("2026-01-15")}, []int64{1, 2, 3, 4}},
		{"from after first half", PayrollFilter{From: day("2026-01-16")}, []int64{3, 4}},
		{"to inclusive", PayrollFilter{To: day("2026-01-16")}, []int64{1, 2, 3}},
		{"window", PayrollFilter{From: day("2026-01-20"), To: day("2026-01-25")}, []int64{3}},
		{"time of day ignored", PayrollFilter{From: day("2026-01-31").Add(20 * time.Hour)}, []int64{3, 4}},
		{"combined", PayrollFilter{Status: models.PayrollPending, StaffID: 1}, []int64{3}},
		{"no match", PayrollFilter{StaffID: 99}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterPayroll(entries, tt.f)))
		})
	}
}

func TestPayrollTotal(t *testing.T) {
	entries := payrollFixture()
	assert.Equal(t, int64(7000), PayrollTotal(entries))
	assert.Equal(t, int64(4000), PayrollTotal(FilterPayroll(entries, PayrollFilter{Status: models.PayrollPending})))
	assert.Zero(t, PayrollTotal(nil))
}

func TestPayrollAmount(t *testing.T) {
	assert.Equal(t, int64(12000), PayrollAmount(8, 1500))
	assert.Equal(t, int64(1250), PayrollAmount(2.5, 500))
	assert.Equal(t, int64(333), PayrollAmount(1.0/3, 1000))
	assert.Zero(t, PayrollAmount(0, 1500))
}

func TestValidPayrollStatus(t *testing.T) {
	assert.True(t, ValidPayrollStatus(models.PayrollApproved))
	assert.False(t, ValidPayrollStatus("void"))
}

func TestAverageTicket(t *testing.T) {
	assert.Equal(t, int64(0), AverageTicket(1000, 0))
	assert.Equal(t, int64(500), AverageTicket(1000, 2))
	assert.Equal(t, int64(334), AverageTicket(1001, 3)) // 333.67
	assert.Equal(t, int64(2), AverageTicket(3, 2))      // 1.5 rounds up
}
