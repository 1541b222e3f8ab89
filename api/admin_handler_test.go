package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"restaurant-backoffice/models"
	"restaurant-backoffice/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fakeBackoffice) AddStaff(_ context.Context, fullName, phone, role string, rate int64) (*models.Staff, string, error) {
	if !models.ValidRole(role) {
		return nil, "", fmt.Errorf("%w: role %q", services.ErrInvalidInput, role)
	}
	st := models.Staff{ID: int64(len(f.staff) + 1), FullName: fullName, Phone: phone, Role: role, HourlyRate: rate, Active: true}
	f.staff[phone] = st
	return &st, "730591", nil
}

func (f *fakeBackoffice) DeactivateStaff(_ context.Context, id int64) error {
	for _, st := range f.staff {
		if st.ID == id {
			f.deactivated = append(f.deactivated, id)
			return nil
		}
	}
	return services.ErrNotFound
}

func (f *fakeBackoffice) ResetPIN(_ context.Context, id int64) (string, error) {
	return "118204", nil
}

func (f *fakeBackoffice) AddPayrollEntry(_ context.Context, staffID int64, start, end time.Time, hours float64) (*models.PayrollEntry, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period ends before it starts", services.ErrInvalidInput)
	}
	e := models.PayrollEntry{ID: 9, StaffID: staffID, PeriodStart: start, PeriodEnd: end, Hours: hours,
		Amount: services.PayrollAmount(hours, 1200), Status: models.PayrollPending}
	return &e, nil
}

func (f *fakeBackoffice) SetPayrollStatus(_ context.Context, id int64, status string) error {
	if status == models.PayrollPending {
		return services.ErrInvalidTransition
	}
	if f.payrollSet == nil {
		f.payrollSet = map[int64]string{}
	}
	f.payrollSet[id] = status
	return nil
}

func (f *fakeBackoffice) ListStockMovements(_ context.Context, stockID int64, limit int) ([]models.StockMovement, error) {
	if stockID != 1 {
		return nil, nil
	}
	return []models.StockMovement{{ID: 1, StockID: 1, Delta: -2, Reason: "waste", StaffID: 1}}, nil
}

var managerSession = models.Session{StaffID: 1, StaffName: "Mia Manager", Role: models.RoleManager}

func TestAddStaff(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, managerSession)

	rec := env.do(t, http.MethodPost, "/api/staff", tok, addStaffRequest{FullName: "Cora Cook", Phone: "+300", Role: models.RoleCook, HourlyRate: 1500})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[staffWithPIN](t, rec)
	assert.Equal(t, "730591", resp.PIN)
	require.NotNil(t, resp.Staff)
	assert.Equal(t, "Cora Cook", resp.Staff.FullName)

	rec = env.do(t, http.MethodPost, "/api/staff", tok, addStaffRequest{FullName: "X", Phone: "+301", Role: "boss"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	waiter := env.token(t, waiterSession)
	rec = env.do(t, http.MethodPost, "/api/staff", waiter, addStaffRequest{FullName: "Y", Phone: "+302", Role: models.RoleWaiter})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeactivateStaff(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, managerSession)

	rec := env.do(t, http.MethodPost, "/api/staff/2/deactivate", tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{2}, env.store.deactivated)

	rec = env.do(t, http.MethodPost, "/api/staff/1/deactivate", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/staff/99/deactivate", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPIN(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, managerSession)

	rec := env.do(t, http.MethodPost, "/api/staff/2/reset-pin", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "118204", decode[staffWithPIN](t, rec).PIN)
}

func TestPayrollEntries(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, managerSession)

	rec := env.do(t, http.MethodPost, "/api/payroll", tok, addPayrollRequest{StaffID: 2, PeriodStart: "2026-02-01", PeriodEnd: "2026-02-15", Hours: 10})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decode[models.PayrollEntry](t, rec)
	assert.Equal(t, int64(12000), e.Amount)
	assert.Equal(t, models.PayrollPending, e.Status)

	rec = env.do(t, http.MethodPost, "/api/payroll", tok, addPayrollRequest{StaffID: 2, PeriodStart: "02/01/2026", PeriodEnd: "2026-02-15"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payroll", tok, addPayrollRequest{StaffID: 2, PeriodStart: "2026-02-15", PeriodEnd: "2026-02-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payroll/9/status", tok, statusRequest{Status: models.PayrollApproved})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.PayrollApproved, env.store.payrollSet[9])

	rec = env.do(t, http.MethodPost, "/api/payroll/9/status", tok, statusRequest{Status: models.PayrollPending})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStockMovements(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, managerSession)

	rec := env.do(t, http.MethodGet, "/api/stock/1/movements", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	moves := decode[[]models.StockMovement](t, rec)
	require.Len(t, moves, 1)
	assert.Equal(t, "waste", moves[0].Reason)

	rec = env.do(t, http.MethodGet, "/api/stock/2/movements", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/stock/1/movements?limit=0", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeactivatedStaffLosesSession(t *testing.T) {
	env := newTestEnv(t)
	manager := env.token(t, managerSession)

	rec := env.do(t, http.MethodPost, "/api/login", "", loginRequest{Phone: "+200", PIN: "4821"})
	require.Equal(t, http.StatusOK, rec.Code)
	waiter := decode[loginResponse](t, rec).Token

	rec = env.do(t, http.MethodPost, "/api/cart/items?table=3", waiter, addItemRequest{MenuItemID: "1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/staff/2/deactivate", manager, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/items?table=3", waiter, addItemRequest{MenuItemID: "1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/cart/submit?table=3", waiter, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.orders)

	// the manager's own session is untouched
	rec = env.do(t, http.MethodGet, "/api/payroll", manager, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPINRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	manager := env.token(t, managerSession)
	waiter := env.token(t, waiterSession)

	rec := env.do(t, http.MethodPost, "/api/staff/2/reset-pin", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/cart?table=3", waiter, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
